package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/takak2166/bookstack-export/internal/config"
)

func TestPathExtension(t *testing.T) {
	tests := []struct {
		exportType config.ExportType
		suffix     string
	}{
		{exportType: config.ExportMarkdown, suffix: ".md"},
		{exportType: config.ExportPDF, suffix: ".pdf"},
		{exportType: config.ExportPlaintext, suffix: ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.exportType.String(), func(t *testing.T) {
			base := t.TempDir()
			b, err := NewPathBuilder(base, tt.exportType)
			if err != nil {
				t.Fatalf("NewPathBuilder() error = %v", err)
			}

			path, err := b.Path("", "intro")
			if err != nil {
				t.Fatalf("Path() error = %v", err)
			}
			if !strings.HasSuffix(path, tt.suffix) {
				t.Errorf("Expected %s suffix, got %s", tt.suffix, path)
			}

			want := filepath.Join(base, "exports", tt.exportType.String(), "intro"+tt.suffix)
			if path != want {
				t.Errorf("Expected %s, got %s", want, path)
			}
		})
	}
}

func TestPathWithBook(t *testing.T) {
	base := t.TempDir()
	b, err := NewPathBuilder(base, config.ExportMarkdown)
	if err != nil {
		t.Fatalf("NewPathBuilder() error = %v", err)
	}

	path, err := b.Path("getting-started", "setup")
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}

	want := filepath.Join(base, "exports", "markdown", "getting-started", "setup.md")
	if path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil || !info.IsDir() {
		t.Errorf("Expected book directory to exist: %v", err)
	}
}

func TestPathIdempotent(t *testing.T) {
	base := t.TempDir()
	b, err := NewPathBuilder(base, config.ExportPDF)
	if err != nil {
		t.Fatalf("NewPathBuilder() error = %v", err)
	}

	first, err := b.Path("admin-guide", "users")
	if err != nil {
		t.Fatalf("First Path() error = %v", err)
	}
	second, err := b.Path("admin-guide", "users")
	if err != nil {
		t.Fatalf("Second Path() error = %v", err)
	}
	if first != second {
		t.Errorf("Expected identical paths, got %s and %s", first, second)
	}

	entries, err := os.ReadDir(filepath.Join(base, "exports", "pdf"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "admin-guide" {
		t.Errorf("Expected a single admin-guide directory, got %v", entries)
	}
}

func TestNewPathBuilderUnsupportedType(t *testing.T) {
	_, err := NewPathBuilder(t.TempDir(), "html")
	if !errors.Is(err, config.ErrUnsupportedExportType) {
		t.Errorf("Expected ErrUnsupportedExportType, got %v", err)
	}
}

func TestPathDirectoryBlocked(t *testing.T) {
	base := t.TempDir()
	b, err := NewPathBuilder(base, config.ExportMarkdown)
	if err != nil {
		t.Fatalf("NewPathBuilder() error = %v", err)
	}

	// a regular file where the book directory should go
	if err := os.MkdirAll(b.Root(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(b.Root(), "blocked"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = b.Path("blocked", "page")
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Errorf("Expected *WriteError, got %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	b, err := NewPathBuilder(base, config.ExportMarkdown)
	if err != nil {
		t.Fatalf("NewPathBuilder() error = %v", err)
	}

	tests := []struct {
		name     string
		bookSlug string
		pageSlug string
	}{
		{name: "Empty page slug", bookSlug: "book", pageSlug: ""},
		{name: "Parent page slug", bookSlug: "book", pageSlug: "../../escaped"},
		{name: "Dot page slug", pageSlug: "."},
		{name: "Nested page slug", pageSlug: "a/b"},
		{name: "Parent book slug", bookSlug: "..", pageSlug: "intro"},
		{name: "Absolute book slug", bookSlug: "/tmp", pageSlug: "intro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := b.Path(tt.bookSlug, tt.pageSlug)
			if !errors.Is(err, ErrUnsafePath) {
				t.Errorf("Expected ErrUnsafePath, got path %q err %v", path, err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(base, "exports", "escaped.md")); !os.IsNotExist(err) {
		t.Errorf("Expected nothing written outside the export directory, got %v", err)
	}
}
