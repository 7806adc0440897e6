package service

import "errors"

// Error taxonomy shared by all services. Each method returns the most
// specific member it can determine, wrapped with context via fmt.Errorf and
// %w; the HTTP layer alone maps these to status codes.
var (
	// ErrValidation marks bad input (missing title, wrong MIME type, oversized payload).
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks a failed role or visibility check.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a missing document, category, user or blob.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique-constraint violation such as a duplicate category slug.
	ErrConflict = errors.New("conflict")
	// ErrStorage marks an unavailable or failing blob/metadata store.
	ErrStorage = errors.New("storage unavailable")
)
