package transcript

import (
	"context"
	"errors"
)

// ErrNotConfigured signals that a provider's credential is absent. The
// pipeline treats it as "skip this provider", not as a failure worth a
// warning.
var ErrNotConfigured = errors.New("provider not configured")

// Provider is one external transcript source. Fetch performs exactly one
// upstream attempt and returns normalized segments ordered by offset.
// An empty segment list with a nil error is treated as a failure by the
// pipeline.
type Provider interface {
	Name() Source
	Fetch(ctx context.Context, videoID string) ([]Segment, error)
}
