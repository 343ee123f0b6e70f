package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// errorBody is the backend's error envelope; routes use either key.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b *errorBody) text() string {
	if b == nil {
		return ""
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// UserMessage returns the server-provided message carried by err, or
// fallback when err did not come with one.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
