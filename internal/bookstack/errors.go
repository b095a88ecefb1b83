package bookstack

import (
	"fmt"
)

// TransportError is returned when a request never produced an HTTP response
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is returned when BookStack answers with a non-2xx status
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("BookStack API error on %s (status %d): %s: %s", e.Endpoint, e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("BookStack API error on %s (status %d): %s", e.Endpoint, e.StatusCode, e.Status)
}

// NotFound reports whether the page or book does not exist
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}

// DecodeError is returned when a response body cannot be read or parsed
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
