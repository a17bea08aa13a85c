package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/savetube/savetube/internal/progress"
)

// PrometheusSink exports fetch progress metrics via Prometheus. It owns all
// collectors for jobs started/completed/running and per-platform engine
// counters.
type PrometheusSink struct {
	jobsStarted   prometheus.Counter
	jobsCompleted *prometheus.CounterVec
	jobsRunning   prometheus.Gauge
	jobRuntime    *prometheus.HistogramVec

	engineRuns     *prometheus.CounterVec
	engineBytes    *prometheus.CounterVec
	engineDuration *prometheus.HistogramVec
	recoveries     *prometheus.CounterVec

	tracker *jobTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		jobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "savetube_jobs_started_total",
			Help: "Total jobs that have started.",
		}),
		jobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savetube_jobs_completed_total",
			Help: "Total jobs completed partitioned by result.",
		}, []string{"result"}),
		jobsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "savetube_jobs_running",
			Help: "Current number of running jobs.",
		}),
		jobRuntime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "savetube_job_runtime_seconds",
			Help:    "Wall time per completed job.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"result"}),
		engineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savetube_engine_runs_total",
			Help: "Engine run completions partitioned by platform.",
		}, []string{"platform"}),
		engineBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savetube_engine_bytes_total",
			Help: "Artifact bytes produced per platform.",
		}, []string{"platform"}),
		engineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "savetube_engine_run_duration_seconds",
			Help:    "Engine run duration partitioned by platform.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"platform"}),
		recoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "savetube_artifact_recoveries_total",
			Help: "Downloads salvaged from disk after an engine error.",
		}, []string{"platform"}),
		tracker: newJobTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.jobsStarted,
		s.jobsCompleted,
		s.jobsRunning,
		s.jobRuntime,
		s.engineRuns,
		s.engineBytes,
		s.engineDuration,
		s.recoveries,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageJobStart, progress.StageJobDone, progress.StageJobError:
		s.handleJobEvent(evt)
	case progress.StageEngineDone:
		s.handleEngineEvent(evt)
	case progress.StageRecovery:
		s.recoveries.WithLabelValues(platformLabel(evt)).Inc()
	}
}

func (s *PrometheusSink) handleJobEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageJobStart:
		s.jobsStarted.Inc()
		if s.tracker.start(evt.JobID) {
			s.jobsRunning.Inc()
		}
	case progress.StageJobDone:
		s.jobsCompleted.WithLabelValues("success").Inc()
		s.observeRuntime(evt, "success")
	case progress.StageJobError:
		s.jobsCompleted.WithLabelValues("error").Inc()
		s.observeRuntime(evt, "error")
	}
	if evt.Stage != progress.StageJobStart && s.tracker.complete(evt.JobID) {
		s.jobsRunning.Dec()
	}
}

func (s *PrometheusSink) observeRuntime(evt progress.Event, label string) {
	if evt.Dur > 0 {
		s.jobRuntime.WithLabelValues(label).Observe(evt.Dur.Seconds())
	}
}

func (s *PrometheusSink) handleEngineEvent(evt progress.Event) {
	platform := platformLabel(evt)
	s.engineRuns.WithLabelValues(platform).Inc()
	if evt.Bytes > 0 {
		s.engineBytes.WithLabelValues(platform).Add(float64(evt.Bytes))
	}
	if evt.Dur > 0 {
		s.engineDuration.WithLabelValues(platform).Observe(evt.Dur.Seconds())
	}
}

func platformLabel(evt progress.Event) string {
	if evt.Platform == "" {
		return "unknown"
	}
	return evt.Platform
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type jobTracker struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newJobTracker() *jobTracker {
	return &jobTracker{running: make(map[string]struct{})}
}

func (t *jobTracker) start(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *jobTracker) complete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
