package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classify pipeline failures for the HTTP layer.
var (
	// ErrMissingInput marks a request without its primary input field.
	ErrMissingInput = errors.New("missing required input")
	// ErrMissingCredential marks a deployment without the oracle credential.
	ErrMissingCredential = errors.New("required credential is not configured")
	// ErrUpstreamTimeout marks the shared pipeline deadline expiring while
	// the mandatory extraction call was in flight.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// UpstreamError carries the diagnostic text a failing upstream returned so
// it reaches the caller instead of being swallowed.
type UpstreamError struct {
	Source string
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s returned %d: %s", e.Source, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s failed: %s", e.Source, e.Detail)
}
