package config

import "fmt"

// ExportType is the output format requested from the export endpoint
type ExportType string

const (
	ExportMarkdown  ExportType = "markdown"
	ExportPDF       ExportType = "pdf"
	ExportPlaintext ExportType = "plaintext"
)

// Extension returns the file extension for the export type
func (t ExportType) Extension() (string, error) {
	switch t {
	case ExportMarkdown:
		return "md", nil
	case ExportPDF:
		return "pdf", nil
	case ExportPlaintext:
		return "txt", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExportType, string(t))
	}
}

func (t ExportType) String() string {
	return string(t)
}
