package bookstack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/takak2166/bookstack-export/internal/logger"
	"github.com/takak2166/bookstack-export/internal/models"
)

const (
	userAgent = "bookstack-export/1.0"

	// maxErrorBody bounds how much of an error response is kept for the log
	maxErrorBody = 512
)

// HTTPDoer is the part of *http.Client the BookStack client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the BookStack REST API using token authentication
type Client struct {
	http       HTTPDoer
	baseURL    string
	authHeader string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: timeout}
	}
}

// New creates a new BookStack client
func New(baseURL, tokenID, tokenSecret string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("BookStack base URL is not set")
	}
	if tokenID == "" || tokenSecret == "" {
		return nil, fmt.Errorf("BookStack token id and secret are required")
	}

	c := &Client{
		http:       &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: fmt.Sprintf("Token %s:%s", tokenID, tokenSecret),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListPages fetches the page listing in a single call
func (c *Client) ListPages(ctx context.Context) (*models.PageList, error) {
	endpoint := "/api/pages"
	logger.Debug("Fetching page list", map[string]interface{}{
		"endpoint": endpoint,
	})

	body, err := c.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}

	list, err := decodePageList(body)
	if err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}

	return list, nil
}

// GetBook fetches a single book, used to resolve a page's parent book slug
func (c *Client) GetBook(ctx context.Context, bookID string) (*models.Book, error) {
	endpoint := "/api/books/" + url.PathEscape(bookID)
	logger.Debug("Fetching book", map[string]interface{}{
		"book_id": bookID,
	})

	body, err := c.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}

	book := &models.Book{}
	if err := json.Unmarshal(body, book); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	book.ID = bookID

	return book, nil
}

// ExportPage downloads a page in the given export format and returns the raw bytes
func (c *Client) ExportPage(ctx context.Context, pageID string, exportType string) ([]byte, error) {
	endpoint := fmt.Sprintf("/api/pages/%s/export/%s", url.PathEscape(pageID), url.PathEscape(exportType))
	logger.Debug("Exporting page", map[string]interface{}{
		"page_id":     pageID,
		"export_type": exportType,
	})

	return c.get(ctx, endpoint, "*/*")
}

// get performs an authenticated GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, endpoint, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}

type pageEntry struct {
	ID       json.Number `json:"id"`
	Slug     *string     `json:"slug"`
	Name     string      `json:"name"`
	BookID   json.Number `json:"book_id"`
	BookSlug string      `json:"book_slug"`
}

// decodePageList reads `total` and collects page entries from every other
// top-level key holding a list. Non-list values are skipped.
func decodePageList(body []byte) (*models.PageList, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	list := &models.PageList{}
	if total, ok := raw["total"]; ok {
		if err := json.Unmarshal(total, &list.Total); err != nil {
			return nil, fmt.Errorf("total: %w", err)
		}
		delete(raw, "total")
	}

	for _, key := range slices.Sorted(maps.Keys(raw)) {
		value := bytes.TrimSpace(raw[key])
		if len(value) == 0 || value[0] != '[' {
			logger.Debug("Skipping non-list key in page listing", map[string]interface{}{
				"key": key,
			})
			continue
		}

		var entries []pageEntry
		dec := json.NewDecoder(bytes.NewReader(value))
		dec.UseNumber()
		if err := dec.Decode(&entries); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		for i, e := range entries {
			if e.ID == "" {
				return nil, fmt.Errorf("%s[%d]: missing page id", key, i)
			}
			entry := models.PageEntry{
				ID:       e.ID.String(),
				Name:     e.Name,
				BookID:   e.BookID.String(),
				BookSlug: e.BookSlug,
			}
			if e.Slug != nil {
				entry.Slug = *e.Slug
			}
			list.Pages = append(list.Pages, entry)
		}
	}

	return list, nil
}
