package progress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config tunes how the Hub buffers job lifecycle events before handing them
// to sinks. Zero values pick defaults sized for a download service, where
// jobs run for seconds to minutes and emit only a handful of events each:
// flushes are small and frequent rather than large and rare.
type Config struct {
	// Buffer is the capacity of the intake channel shared by all workers.
	Buffer int
	// FlushSize flushes the pending batch once it holds this many events.
	FlushSize int
	// FlushInterval flushes whatever is pending on this cadence.
	FlushInterval time.Duration
	// SinkTimeout bounds each individual sink call during a flush.
	SinkTimeout time.Duration
	// Logger reports dropped events and sink failures.
	Logger *zap.Logger
}

const (
	defaultBuffer        = 1024
	defaultFlushSize     = 64
	defaultFlushInterval = time.Second
	defaultSinkTimeout   = 5 * time.Second
)

// Hub fans job events out to its sinks from a single background goroutine.
// Emit never blocks a worker: when the intake buffer is full the event is
// counted as dropped and the count is reported on the next flush.
type Hub struct {
	cfg     Config
	sinks   []Sink
	intake  chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	logger  *zap.Logger
	dropped atomic.Int64
	closed  atomic.Bool

	closeOnce sync.Once
}

// NewHub starts the flush goroutine and returns a Hub ready for Emit.
func NewHub(cfg Config, sinks ...Sink) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = defaultFlushSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = defaultSinkTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		cfg:    cfg,
		sinks:  append([]Sink(nil), sinks...),
		intake: make(chan Event, cfg.Buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
	}
	go h.run()
	return h
}

// Emit hands an event to the hub. Malformed events are discarded; a full
// intake buffer drops the event rather than stalling the worker.
func (h *Hub) Emit(evt Event) {
	if h == nil || h.closed.Load() {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("discarding malformed job event", zap.Error(err))
		return
	}
	select {
	case h.intake <- evt:
	default:
		h.dropped.Add(1)
	}
}

// Close drains the intake, flushes the last batch, closes the sinks, and
// waits for the flush goroutine to exit. Safe to call more than once.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.stopCh)
	})
	select {
	case <-h.doneCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for event hub shutdown: %w", ctx.Err())
	}
}

func (h *Hub) run() {
	defer close(h.doneCh)
	ticker := time.NewTicker(h.cfg.FlushInterval)
	defer ticker.Stop()
	pending := make([]Event, 0, h.cfg.FlushSize)
	for {
		select {
		case evt := <-h.intake:
			pending = append(pending, evt)
			if len(pending) >= h.cfg.FlushSize {
				pending = h.flush(pending)
			}
		case <-ticker.C:
			pending = h.flush(pending)
		case <-h.stopCh:
			h.flush(h.drain(pending))
			h.closeSinks()
			return
		}
	}
}

// drain empties whatever is still buffered in the intake channel at shutdown.
func (h *Hub) drain(pending []Event) []Event {
	for {
		select {
		case evt := <-h.intake:
			pending = append(pending, evt)
			if len(pending) >= h.cfg.FlushSize {
				pending = h.flush(pending)
			}
		default:
			return pending
		}
	}
}

func (h *Hub) flush(pending []Event) []Event {
	if dropped := h.dropped.Swap(0); dropped > 0 {
		h.logger.Warn("job events dropped, intake buffer full", zap.Int64("dropped", dropped))
	}
	if len(pending) == 0 {
		return pending
	}
	batch := append([]Event(nil), pending...)
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SinkTimeout)
		if err := sink.Consume(ctx, batch); err != nil {
			h.logger.Warn("job event sink rejected batch", zap.Error(err))
		}
		cancel()
	}
	return pending[:0]
}

func (h *Hub) closeSinks() {
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SinkTimeout)
		if err := sink.Close(ctx); err != nil {
			h.logger.Warn("job event sink close failed", zap.Error(err))
		}
		cancel()
	}
}
