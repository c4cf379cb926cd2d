package domain

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrMissingFields     = errors.New("state, price, manufacturer, model, type and photo are required")
	ErrCredentialMissing = errors.New("you must login to access this resource")
	ErrCredentialInvalid = errors.New("token is invalid")
	ErrImageHost         = errors.New("image host request failed")
)

// ValidationError reports the first field of a payload that failed its semantic check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// UpstreamError wraps a failed or timed out call to the image host. It matches
// ErrImageHost under errors.Is.
type UpstreamError struct {
	Op  string
	Key string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("image host %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrImageHost, e.Err}
}
