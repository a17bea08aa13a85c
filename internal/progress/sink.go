package progress

import "context"

// Sink receives flushed batches of job events. The hub calls Consume and
// Close from one goroutine, so implementations need no locking of their own
// unless they expose state to other readers.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter is the write side of the hub. Workers hold this interface so tests
// can capture events without running a Hub.
type Emitter interface {
	Emit(evt Event)
}
