package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/savetube/savetube/internal/progress"
)

// TestPrometheusSinkRecordsMetrics ensures counters and histograms are incremented from events.
func TestPrometheusSinkRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	const jobID = "a1b2c3d4"
	batch := []progress.Event{
		{JobID: jobID, TS: time.Now(), Stage: progress.StageJobStart},
		{
			JobID:    jobID,
			TS:       time.Now().Add(10 * time.Second),
			Stage:    progress.StageEngineDone,
			Platform: "youtube",
			Bytes:    1024,
			Dur:      200 * time.Millisecond,
		},
		{JobID: jobID, TS: time.Now().Add(15 * time.Second), Stage: progress.StageJobDone, Dur: 15 * time.Second},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.jobsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.jobsCompleted.WithLabelValues("success")))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.jobsCompleted.WithLabelValues("error")))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.jobsRunning))

	require.InDelta(t, 1.0, testutil.ToFloat64(sink.engineRuns.WithLabelValues("youtube")), 1e-9)
	require.InDelta(t, 1024.0, testutil.ToFloat64(sink.engineBytes.WithLabelValues("youtube")), 1e-9)
	require.Equal(t, 1, testutil.CollectAndCount(sink.engineDuration, "savetube_engine_run_duration_seconds"))
}

// TestPrometheusSinkRecovery verifies recovery events are counted per platform.
func TestPrometheusSinkRecovery(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	batch := []progress.Event{
		{JobID: "ffffffff", TS: time.Now(), Stage: progress.StageRecovery, Platform: "tiktok"},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.recoveries.WithLabelValues("tiktok")))
}
