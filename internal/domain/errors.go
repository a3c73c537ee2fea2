package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the upstream and persistence layers. Wrapped with
// fmt.Errorf("%w: ...") at the call site so errors.Is works across the
// pipeline boundary.
var (
	// ErrUpstreamLookup means identity resolution failed or returned no
	// match. Always fatal for the request.
	ErrUpstreamLookup = errors.New("upstream lookup failed")

	// ErrUpstreamFetch means a stats or avatar fetch failed. Fatal for
	// stats, degraded for avatars.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrPersistence means a backend read or write failed. Never fatal;
	// callers substitute a safe default.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound is the backend's 404, used to tell a missing record
	// apart from a real failure.
	ErrNotFound = errors.New("not found")
)

// PipelineError wraps the fatal cause of an aborted player-details request.
type PipelineError struct {
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("player details pipeline: %v", e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}
