package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ErrUnsupportedExportType is returned for export types other than markdown, pdf and plaintext
var ErrUnsupportedExportType = errors.New("unsupported export type")

// Error describes an invalid or missing configuration value
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds everything the lister and exporter need, read once at startup
type Config struct {
	BookstackURL string        `env:"BOOKSTACK_URL" env-required:"true"`
	TokenID      string        `env:"TOKEN_ID" env-required:"true"`
	TokenSecret  string        `env:"TOKEN_SECRET" env-required:"true"`
	InfoFile     string        `env:"INFO_FILE" env-required:"true"`
	ExportType   ExportType    `env:"EXPORT_TYPE"`
	IndexFields  int           `env:"INDEX_FIELDS" env-default:"3"`
	ExportDir    string        `env:"EXPORT_DIR" env-default:"."`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" env-default:"60s"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info"`
}

// LoadDotEnv loads variables from the given .env file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &Error{Field: "env-file", Reason: "failed to load " + path, Err: err}
	}
	return nil
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, &Error{Field: "environment", Reason: "failed to read", Err: err}
	}

	cfg.BookstackURL = strings.TrimRight(cfg.BookstackURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings shared by every stage
func (c *Config) Validate() error {
	if c.BookstackURL == "" {
		return &Error{Field: "BOOKSTACK_URL", Reason: "is not set"}
	}
	if !strings.HasPrefix(c.BookstackURL, "http://") && !strings.HasPrefix(c.BookstackURL, "https://") {
		return &Error{Field: "BOOKSTACK_URL", Reason: "must start with http:// or https://"}
	}
	if c.TokenID == "" {
		return &Error{Field: "TOKEN_ID", Reason: "is not set"}
	}
	if c.TokenSecret == "" {
		return &Error{Field: "TOKEN_SECRET", Reason: "is not set"}
	}
	if c.InfoFile == "" {
		return &Error{Field: "INFO_FILE", Reason: "is not set"}
	}
	if c.IndexFields != 2 && c.IndexFields != 3 {
		return &Error{Field: "INDEX_FIELDS", Reason: fmt.Sprintf("must be 2 or 3, got %d", c.IndexFields)}
	}
	if c.HTTPTimeout <= 0 {
		return &Error{Field: "HTTP_TIMEOUT", Reason: "must be positive"}
	}
	return nil
}

// ValidateExport additionally checks the settings only the exporter needs
func (c *Config) ValidateExport() error {
	if c.ExportType == "" {
		return &Error{Field: "EXPORT_TYPE", Reason: "is not set"}
	}
	if _, err := c.ExportType.Extension(); err != nil {
		return &Error{Field: "EXPORT_TYPE", Reason: fmt.Sprintf("%q is not one of markdown, pdf, plaintext", c.ExportType), Err: err}
	}
	return nil
}
