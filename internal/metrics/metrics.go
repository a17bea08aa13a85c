// Package metrics exposes Prometheus collectors for the download service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchJobsTotal             *prometheus.CounterVec
	artifactBytesTotal         *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	admissionRejectionsTotal   *prometheus.CounterVec
	fetchActiveWorkers         prometheus.Gauge
	enginePacingDelaySeconds   *prometheus.HistogramVec

	once sync.Once
)

func init() {
	Init()
}

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savetube_fetch_jobs_total",
				Help: "Total number of fetch jobs processed, labeled by platform and status.",
			},
			[]string{"platform", "status"},
		)

		artifactBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savetube_artifact_bytes_total",
				Help: "Total artifact bytes produced, labeled by platform.",
			},
			[]string{"platform"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)

		admissionRejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savetube_admission_rejections_total",
				Help: "Total requests rejected by admission control, labeled by reason.",
			},
			[]string{"reason"},
		)

		fetchActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "savetube_fetch_active_workers",
				Help: "Number of workers currently executing a fetch job.",
			},
		)

		enginePacingDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "savetube_engine_pacing_delay_seconds",
				Help:    "Histogram of outbound engine pacing wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"platform"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetchJob increments the fetch job counter and, for successful jobs,
// the artifact byte counter.
func ObserveFetchJob(platform string, status string, artifactBytes int64) {
	fetchJobsTotal.WithLabelValues(platform, status).Inc()
	if artifactBytes > 0 {
		artifactBytesTotal.WithLabelValues(platform).Add(float64(artifactBytes))
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveAdmissionRejection increments the rejection counter for a reason.
func ObserveAdmissionRejection(reason string) {
	admissionRejectionsTotal.WithLabelValues(reason).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	fetchActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	fetchActiveWorkers.Dec()
}

// ObservePacingDelay records the duration of an engine pacing wait.
func ObservePacingDelay(platform string, duration time.Duration) {
	enginePacingDelaySeconds.WithLabelValues(platform).Observe(duration.Seconds())
}
