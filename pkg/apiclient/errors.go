package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport wraps failures to reach the backend at all.
	ErrTransport = errors.New("apiclient.transport")

	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("apiclient.unauthorized")

	// ErrDecode is returned when a successful response body is not valid JSON
	// for the expected type.
	ErrDecode = errors.New("apiclient.decode")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
}

// Is reports 401 responses as ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status of an API error, or 0 for any other error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the server-provided message of an API error, or an empty
// string when the response carried none.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
