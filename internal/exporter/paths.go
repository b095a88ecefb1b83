package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/takak2166/bookstack-export/internal/config"
	"github.com/takak2166/bookstack-export/internal/index"
)

// ErrUnsafePath is returned for slugs that are empty or would leave the export directory
var ErrUnsafePath = errors.New("slug is not a single path segment")

// PathBuilder maps page records to files under <base>/exports/<export_type>
type PathBuilder struct {
	root string
	ext  string
}

// NewPathBuilder returns a PathBuilder for the given base directory and export type
func NewPathBuilder(base string, exportType config.ExportType) (*PathBuilder, error) {
	ext, err := exportType.Extension()
	if err != nil {
		return nil, err
	}
	return &PathBuilder{
		root: filepath.Join(base, "exports", exportType.String()),
		ext:  ext,
	}, nil
}

// Root returns the directory all exports are stored under
func (b *PathBuilder) Root() string {
	return b.root
}

// Path returns <root>/[<bookSlug>/]<pageSlug>.<ext> and creates its directory if needed
func (b *PathBuilder) Path(bookSlug, pageSlug string) (string, error) {
	if !index.IsPathSegment(pageSlug) {
		return "", fmt.Errorf("page slug: %w: %q", ErrUnsafePath, pageSlug)
	}

	dir := b.root
	if bookSlug != "" {
		if !index.IsPathSegment(bookSlug) {
			return "", fmt.Errorf("book slug: %w: %q", ErrUnsafePath, bookSlug)
		}
		dir = filepath.Join(dir, bookSlug)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &WriteError{Path: dir, Err: fmt.Errorf("create directory: %w", err)}
	}

	return filepath.Join(dir, pageSlug+"."+b.ext), nil
}
