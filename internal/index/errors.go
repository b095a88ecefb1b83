package index

import (
	"errors"
	"fmt"
)

// ErrLocked is returned when another run holds the index file lock
var ErrLocked = errors.New("index file is locked by another run")

// ParseError reports a line with the wrong number of colon-delimited fields
type ParseError struct {
	Path string
	Line int
	Text string
	Got  int
	Want int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: expected %d fields, got %d in %q", e.Path, e.Line, e.Want, e.Got, e.Text)
}

// FieldError reports a field that cannot be stored in, or was read from, the
// index file. Path and Line are set when the field came from a file.
type FieldError struct {
	Path   string
	Line   int
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: invalid %s %q: %s", e.Path, e.Line, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
