package shared

import "errors"

// Error kinds wrapped by domain errors and mapped to transport statuses by
// platform/httpx.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique business key already exists.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the request conflicts with current state.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable indicates an external collaborator failed.
	ErrUnavailable = errors.New("upstream unavailable")
)
