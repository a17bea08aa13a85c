package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/savetube/savetube/internal/progress"
)

func TestRecentSinkRetainsLatest(t *testing.T) {
	t.Parallel()

	sink := NewRecentSink(3)
	batch := []progress.Event{
		{JobID: "job-1", TS: time.Now(), Stage: progress.StageJobStart},
		{JobID: "job-2", TS: time.Now(), Stage: progress.StageJobStart},
		{JobID: "job-3", TS: time.Now(), Stage: progress.StageJobDone},
		{JobID: "job-4", TS: time.Now(), Stage: progress.StageJobError},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	events := sink.Snapshot()
	require.Len(t, events, 3)
	require.Equal(t, "job-2", events[0].JobID)
	require.Equal(t, "job-4", events[2].JobID)

	done, failed := sink.Completed()
	require.Equal(t, 1, done)
	require.Equal(t, 1, failed)
}
