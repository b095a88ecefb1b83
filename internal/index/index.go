// Package index reads and writes the colon-delimited page index file that
// bridges the listing and export stages.
//
// Each line is either "id:slug" or "id:slug:book_slug". Colons inside
// fields are not escaped, so they are rejected on write.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/takak2166/bookstack-export/internal/logger"
	"github.com/takak2166/bookstack-export/internal/models"
)

// Format is the number of fields per index line
type Format int

const (
	TwoField   Format = 2
	ThreeField Format = 3
)

// ParseFormat converts a field count into a Format
func ParseFormat(fields int) (Format, error) {
	switch Format(fields) {
	case TwoField, ThreeField:
		return Format(fields), nil
	default:
		return 0, fmt.Errorf("unsupported index format: %d fields", fields)
	}
}

func lockPath(path string) string {
	return path + ".lock"
}

// Writer appends records to a freshly truncated index file
type Writer struct {
	path   string
	format Format
	file   *os.File
	buf    *bufio.Writer
	lock   *flock.Flock
	count  int
}

// Create truncates (or creates) the index file and holds an exclusive lock on
// <path>.lock until Close is called. Close removes the lock file again.
func Create(path string, format Format) (*Writer, error) {
	if _, err := ParseFormat(int(format)); err != nil {
		return nil, err
	}

	lock := flock.New(lockPath(path))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock index file: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	file, err := os.Create(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to create index file: %w", err)
	}

	logger.Debug("Created index file", map[string]interface{}{
		"filepath": path,
		"fields":   int(format),
	})

	return &Writer{
		path:   path,
		format: format,
		file:   file,
		buf:    bufio.NewWriter(file),
		lock:   lock,
	}, nil
}

// Write appends one record as a newline-terminated line
func (w *Writer) Write(rec models.PageRecord) error {
	values := []string{rec.ID, rec.Slug, rec.BookSlug}[:w.format]

	for i, value := range values {
		if fieldErr := validateField(fieldNames[i], value); fieldErr != nil {
			return fieldErr
		}
	}

	if _, err := w.buf.WriteString(strings.Join(values, ":") + "\n"); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	w.count++

	return nil
}

// Count returns the number of records written so far
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered records, closes the file, removes the lock file and
// releases the lock. The lock file is unlinked while still held so a reader
// that opened it concurrently fails with ErrLocked.
func (w *Writer) Close() error {
	defer func() {
		if err := os.Remove(lockPath(w.path)); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove index lock file", map[string]interface{}{
				"filepath": lockPath(w.path),
				"error":    err.Error(),
			})
		}
		if err := w.lock.Unlock(); err != nil {
			logger.Error("Failed to release index lock", err, map[string]interface{}{
				"filepath": w.path,
			})
		}
	}()

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush index file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}
	return nil
}

var fieldNames = []string{"page id", "page slug", "book slug"}

func validateField(name, value string) *FieldError {
	if value == "" {
		return &FieldError{Field: name, Value: value, Reason: "must not be empty"}
	}
	if strings.ContainsAny(value, ":\r\n") {
		return &FieldError{Field: name, Value: value, Reason: "must not contain ':' or line breaks"}
	}
	if name != fieldNames[0] && !IsPathSegment(value) {
		return &FieldError{Field: name, Value: value, Reason: "must be a single path segment"}
	}
	return nil
}

// IsPathSegment reports whether s can be used as one file or directory name
// without leaving its parent directory.
func IsPathSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return filepath.Base(s) == s && !strings.ContainsAny(s, `/\`)
}

// PageMap is the two-field variant: page id to slug, last write wins.
// Ids keep the order in which they were first seen.
type PageMap struct {
	order []string
	slugs map[string]string
}

func newPageMap() *PageMap {
	return &PageMap{slugs: make(map[string]string)}
}

func (m *PageMap) set(id, slug string) {
	if _, ok := m.slugs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.slugs[id] = slug
}

// Get returns the slug stored for a page id
func (m *PageMap) Get(id string) (string, bool) {
	slug, ok := m.slugs[id]
	return slug, ok
}

// Len returns the number of distinct page ids
func (m *PageMap) Len() int {
	return len(m.order)
}

// Records returns the mapping as records in first-seen id order
func (m *PageMap) Records() []models.PageRecord {
	records := make([]models.PageRecord, 0, len(m.order))
	for _, id := range m.order {
		records = append(records, models.PageRecord{ID: id, Slug: m.slugs[id]})
	}
	return records
}

// ReadMap reads a two-field index file
func ReadMap(path string) (*PageMap, error) {
	m := newPageMap()
	err := scan(path, TwoField, func(fields []string) {
		m.set(fields[0], fields[1])
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ReadRecords reads a three-field index file, keeping order and duplicates
func ReadRecords(path string) ([]models.PageRecord, error) {
	var records []models.PageRecord
	err := scan(path, ThreeField, func(fields []string) {
		records = append(records, models.PageRecord{
			ID:       fields[0],
			Slug:     fields[1],
			BookSlug: fields[2],
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Read reads an index file of the given format into records
func Read(path string, format Format) ([]models.PageRecord, error) {
	switch format {
	case TwoField:
		m, err := ReadMap(path)
		if err != nil {
			return nil, err
		}
		return m.Records(), nil
	case ThreeField:
		return ReadRecords(path)
	default:
		return nil, fmt.Errorf("unsupported index format: %d fields", int(format))
	}
}

// scan calls fn with the fields of every non-blank line. Every field is
// checked the same way Writer.Write checks it.
//
// Readers take a shared lock on <path>.lock, creating the file if it does not
// exist, so the directory holding the index must be writable. A lock file a
// reader creates is left in place.
func scan(path string, format Format, fn func(fields []string)) error {
	lock := flock.New(lockPath(path))
	ok, err := lock.TryRLock()
	if err != nil {
		return fmt.Errorf("failed to lock index file: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrLocked)
	}
	defer lock.Unlock()

	logger.Debug("Reading index file", map[string]interface{}{
		"filepath": path,
	})

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ":")
		if len(fields) != int(format) {
			return &ParseError{
				Path: path,
				Line: lineNo,
				Text: line,
				Got:  len(fields),
				Want: int(format),
			}
		}
		for i, value := range fields {
			if fieldErr := validateField(fieldNames[i], value); fieldErr != nil {
				fieldErr.Path = path
				fieldErr.Line = lineNo
				return fieldErr
			}
		}
		fn(fields)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read index file: %w", err)
	}

	return nil
}
