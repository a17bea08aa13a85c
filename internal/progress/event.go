// Package progress defines the event structures emitted by the fetch workers.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageJobStart    Stage = "JOB_START"
	StageJobDone     Stage = "JOB_DONE"
	StageJobError    Stage = "JOB_ERROR"
	StageEngineStart Stage = "ENGINE_START"
	StageEngineDone  Stage = "ENGINE_DONE"
	StageRecovery    Stage = "RECOVERY"
)

// Event captures a single milestone of a fetch job.
type Event struct {
	// JobID is the short job identifier shared with artifact names.
	JobID string
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle or engine milestone occurred.
	Stage Stage
	// Platform scopes engine events to a source site label.
	Platform string
	// Kind is the job kind (probe or download).
	Kind string
	// URL is the submitted media URL; it should not contain credentials.
	URL string
	// Bytes carries the artifact size for completed downloads.
	Bytes int64
	// Dur captures execution latency for engine runs and job completions.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.JobID == "" {
		return errors.New("job id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageJobStart, StageJobDone, StageJobError, StageRecovery:
	case StageEngineStart, StageEngineDone:
		if e.Platform == "" {
			return errors.New("engine events require platform")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
