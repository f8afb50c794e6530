package engine

import "errors"

// Sentinel errors shared across the engine. The API layer maps these to
// HTTP status codes; everything else wraps them with context via %w.
var (
	// ErrInvalidInput marks malformed or missing caller input (bad URL,
	// missing video ID). Rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a video or resource that does not exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded marks an upstream quota/rate-limit rejection.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUpstream marks an upstream service that could not be reached or
	// returned an unexpected error.
	ErrUpstream = errors.New("upstream unavailable")
)
