package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/takak2166/bookstack-export/internal/bookstack"
	"github.com/takak2166/bookstack-export/internal/config"
	"github.com/takak2166/bookstack-export/internal/logger"
	"github.com/takak2166/bookstack-export/internal/models"
)

// WriteError is a local filesystem failure while storing an export
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Result is the outcome of exporting one page
type Result struct {
	Record models.PageRecord
	Path   string
	Bytes  int
	Err    error
}

// Summary collects the results of one export pass
type Summary struct {
	Total    int
	Exported []Result
	Failed   []Result
}

// Err joins the errors of all failed pages, or returns nil
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(s.Failed))
	for _, r := range s.Failed {
		errs = append(errs, fmt.Errorf("page %s (%s): %w", r.Record.ID, r.Record.Slug, r.Err))
	}
	return errors.Join(errs...)
}

// Exporter downloads pages one by one and stores them on disk
type Exporter struct {
	api        bookstack.API
	paths      *PathBuilder
	exportType config.ExportType
}

// New creates a new Exporter
func New(api bookstack.API, base string, exportType config.ExportType) (*Exporter, error) {
	paths, err := NewPathBuilder(base, exportType)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		api:        api,
		paths:      paths,
		exportType: exportType,
	}, nil
}

// Export exports every record in order. A failing page is logged and recorded
// but does not stop the remaining pages. Cancelling ctx stops the loop.
func (e *Exporter) Export(ctx context.Context, records []models.PageRecord) *Summary {
	summary := &Summary{Total: len(records)}

	logger.Info(fmt.Sprintf("All the exported %s-files will be stored in %q", e.exportType, e.paths.Root()), map[string]interface{}{
		"pages": len(records),
	})

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			logger.Warn("Export interrupted", map[string]interface{}{
				"remaining": len(records) - i,
			})
			for _, skipped := range records[i:] {
				summary.Failed = append(summary.Failed, Result{Record: skipped, Err: err})
			}
			break
		}

		result := e.exportOne(ctx, rec)
		if result.Err != nil {
			logger.Error("Failed to export page", result.Err, map[string]interface{}{
				"page_id": rec.ID,
				"slug":    rec.Slug,
			})
			summary.Failed = append(summary.Failed, result)
			continue
		}

		logger.Info("Successfully exported and stored page", map[string]interface{}{
			"page_id":  rec.ID,
			"filepath": result.Path,
		})
		summary.Exported = append(summary.Exported, result)
	}

	logger.Info("Export completed", map[string]interface{}{
		"total_pages":   summary.Total,
		"success_count": len(summary.Exported),
		"failure_count": len(summary.Failed),
	})

	return summary
}

func (e *Exporter) exportOne(ctx context.Context, rec models.PageRecord) Result {
	result := Result{Record: rec}

	path, err := e.paths.Path(rec.BookSlug, rec.Slug)
	if err != nil {
		result.Err = err
		return result
	}
	result.Path = path

	data, err := e.api.ExportPage(ctx, rec.ID, e.exportType.String())
	if err != nil {
		result.Err = err
		return result
	}

	// written in place, an interrupted write can leave a partial file
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Err = &WriteError{Path: path, Err: err}
		return result
	}
	result.Bytes = len(data)

	return result
}
