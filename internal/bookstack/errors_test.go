package bookstack

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with body",
			apiError: &APIError{
				Endpoint:   "/api/pages/4/export/pdf",
				StatusCode: 404,
				Status:     "404 Not Found",
				Body:       "page not found",
			},
			expected: "BookStack API error on /api/pages/4/export/pdf (status 404): 404 Not Found: page not found",
		},
		{
			name: "error without body",
			apiError: &APIError{
				Endpoint:   "/api/pages",
				StatusCode: 500,
				Status:     "500 Internal Server Error",
			},
			expected: "BookStack API error on /api/pages (status 500): 500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: no such host")
	err := &TransportError{Endpoint: "/api/pages", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if got := err.Error(); got != "request to /api/pages failed: dial tcp: no such host" {
		t.Errorf("Unexpected message %q", got)
	}
}
