package sinks

import (
	"context"
	"sync"

	"github.com/savetube/savetube/internal/progress"
)

// RecentSink keeps a bounded in-memory window of the latest events so the
// health endpoint can report recent activity without a durable store.
type RecentSink struct {
	mu     sync.Mutex
	buf    []progress.Event
	next   int
	filled bool
}

// NewRecentSink creates a RecentSink holding at most capacity events.
func NewRecentSink(capacity int) *RecentSink {
	if capacity <= 0 {
		capacity = 128
	}
	return &RecentSink{buf: make([]progress.Event, capacity)}
}

// Consume records each event, overwriting the oldest once full.
func (s *RecentSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		s.buf[s.next] = evt
		s.next++
		if s.next == len(s.buf) {
			s.next = 0
			s.filled = true
		}
	}
	return nil
}

// Snapshot returns the retained events in arrival order.
func (s *RecentSink) Snapshot() []progress.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filled {
		return append([]progress.Event(nil), s.buf[:s.next]...)
	}
	out := make([]progress.Event, 0, len(s.buf))
	out = append(out, s.buf[s.next:]...)
	out = append(out, s.buf[:s.next]...)
	return out
}

// Completed counts retained terminal job events.
func (s *RecentSink) Completed() (done, failed int) {
	for _, evt := range s.Snapshot() {
		switch evt.Stage {
		case progress.StageJobDone:
			done++
		case progress.StageJobError:
			failed++
		}
	}
	return done, failed
}

// Close implements the Sink interface; it performs no action.
func (s *RecentSink) Close(context.Context) error {
	return nil
}
