package lister

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/takak2166/bookstack-export/internal/bookstack"
	"github.com/takak2166/bookstack-export/internal/index"
	"github.com/takak2166/bookstack-export/internal/logger"
	"github.com/takak2166/bookstack-export/internal/models"
)

const maxPlaceholder = 1000

// Lister fetches every page from BookStack and stores it in the index file
type Lister struct {
	api      bookstack.API
	path     string
	format   index.Format
	randInt  func(n int) int
	bookSlug map[string]string
}

// Option configures a Lister
type Option func(*Lister)

// WithRand replaces the random source used for empty-slug placeholders.
// fn must return a value in [0, n).
func WithRand(fn func(n int) int) Option {
	return func(l *Lister) {
		l.randInt = fn
	}
}

// New creates a new Lister writing to the index file at path
func New(api bookstack.API, path string, format index.Format, opts ...Option) *Lister {
	l := &Lister{
		api:      api,
		path:     path,
		format:   format,
		randInt:  rand.IntN,
		bookSlug: make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run truncates the index file, lists all pages and writes one line per page.
// If the listing call fails the index file is left empty.
func (l *Lister) Run(ctx context.Context) (int, error) {
	w, err := index.Create(l.path, l.format)
	if err != nil {
		return 0, err
	}

	count, err := l.fill(ctx, w)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return count, err
	}

	logger.Info("Stored page index", map[string]interface{}{
		"filepath": l.path,
		"pages":    count,
	})

	return count, nil
}

func (l *Lister) fill(ctx context.Context, w *index.Writer) (int, error) {
	logger.Info("Trying to get a list of all BookStack pages")

	list, err := l.api.ListPages(ctx)
	if err != nil {
		logger.Error("Failed to fetch page list", err)
		return 0, fmt.Errorf("list pages: %w", err)
	}

	logger.Info("All pages were fetched from the API", map[string]interface{}{
		"total":   list.Total,
		"entries": len(list.Pages),
	})
	if list.Total != len(list.Pages) {
		logger.Warn("Listing returned a different number of pages than reported", map[string]interface{}{
			"total":   list.Total,
			"entries": len(list.Pages),
		})
	}

	placeholders := make(map[string]string)
	for _, entry := range list.Pages {
		rec := models.PageRecord{
			ID:   entry.ID,
			Slug: l.CheckSlug(entry.Slug),
		}

		if entry.Slug == "" {
			if other, ok := placeholders[rec.Slug]; ok {
				logger.Warn("Empty-slug placeholder collides with another page", map[string]interface{}{
					"slug":       rec.Slug,
					"page_id":    rec.ID,
					"other_page": other,
				})
			}
			placeholders[rec.Slug] = rec.ID
		}

		if l.format == index.ThreeField {
			bookSlug, err := l.resolveBookSlug(ctx, entry)
			if err != nil {
				return w.Count(), err
			}
			rec.BookSlug = bookSlug
		}

		if err := w.Write(rec); err != nil {
			return w.Count(), fmt.Errorf("page %s: %w", entry.ID, err)
		}
	}

	return w.Count(), nil
}

// CheckSlug returns the slug, or "empty-slug-N" with N in [1, 1000] when it is empty.
// Placeholders are not checked for uniqueness.
func (l *Lister) CheckSlug(slug string) string {
	if slug != "" {
		return slug
	}
	return fmt.Sprintf("empty-slug-%d", l.randInt(maxPlaceholder)+1)
}

// resolveBookSlug prefers the slug in the listing and falls back to the books endpoint
func (l *Lister) resolveBookSlug(ctx context.Context, entry models.PageEntry) (string, error) {
	if entry.BookSlug != "" {
		return entry.BookSlug, nil
	}
	if entry.BookID == "" {
		return "", fmt.Errorf("page %s: no parent book", entry.ID)
	}
	if slug, ok := l.bookSlug[entry.BookID]; ok {
		return slug, nil
	}

	book, err := l.api.GetBook(ctx, entry.BookID)
	if err != nil {
		logger.Error("Failed to resolve parent book", err, map[string]interface{}{
			"page_id": entry.ID,
			"book_id": entry.BookID,
		})
		return "", fmt.Errorf("page %s: resolve book %s: %w", entry.ID, entry.BookID, err)
	}
	if book.Slug == "" {
		return "", fmt.Errorf("page %s: book %s has no slug", entry.ID, entry.BookID)
	}

	l.bookSlug[entry.BookID] = book.Slug
	return book.Slug, nil
}
