package fetch

import (
	"context"
	"io"
	"time"
)

// Engine is the external extraction engine: given a URL and a format
// selector it either produces a media file on disk or fails. Calls are
// blocking and potentially long-running.
type Engine interface {
	// Probe fetches metadata without downloading.
	Probe(ctx context.Context, job Job) (Metadata, error)
	// Download runs the full extraction and returns the engine's reported
	// metadata. A non-nil error does not imply no artifact was written.
	Download(ctx context.Context, job Job) (Metadata, error)
	// Version reports the engine binary version for health checks.
	Version() string
	// Update re-resolves the engine binary and reports old and new versions.
	Update(ctx context.Context) (oldVersion, newVersion string, err error)
}

// Queue provides enqueue/dequeue semantics for fetch jobs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Pacer throttles outbound engine calls per platform.
type Pacer interface {
	Wait(ctx context.Context, platform Platform) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces short unique job identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Hasher computes digests for artifact integrity. Implementations stream from
// the reader so callers never load whole artifacts into memory.
type Hasher interface {
	Hash(r io.Reader) (string, error)
}
