package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by both backends.
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("id already exists")
)

// ValidationError reports a missing required field, caught client-side
// before any backend call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// StatusError is a non-2xx HTTP response from the remote API. Body carries
// the raw response body text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

// UploadError is a non-2xx response from the image upload endpoint. The
// create or update that preceded the upload has already completed and is
// not rolled back.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload failed with %d: %s", e.StatusCode, e.Body)
}

// mapStatusError translates a failed API response into the shared error
// taxonomy: 404 and 409 become the matching sentinels (wrapped so the
// server's message is preserved), everything else a *StatusError.
func mapStatusError(statusCode int, body string) error {
	body = strings.TrimSpace(body)
	switch statusCode {
	case 404:
		return fmt.Errorf("%s: %w", body, ErrNotFound)
	case 409:
		return fmt.Errorf("%s: %w", body, ErrDuplicateID)
	}
	return &StatusError{StatusCode: statusCode, Body: body}
}
