// Package orchestrator turns validated client requests into queued fetch jobs
// and waits for their completions.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/artifact"
	"github.com/savetube/savetube/internal/fetch"
)

// Enqueuer submits queue items for worker execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, item fetch.QueueItem) error
}

// Orchestrator validates URLs, assigns job identifiers, and blocks on worker
// completions. One instance serves all HTTP handlers.
type Orchestrator struct {
	enqueuer  Enqueuer
	ids       fetch.IDGenerator
	clock     fetch.Clock
	artifacts *artifact.Store
	logger    *zap.Logger
}

// New constructs an Orchestrator.
func New(
	enqueuer Enqueuer,
	ids fetch.IDGenerator,
	clock fetch.Clock,
	artifacts *artifact.Store,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		enqueuer:  enqueuer,
		ids:       ids,
		clock:     clock,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Probe fetches metadata for a URL without downloading media. It blocks until
// a worker replies or ctx ends.
func (o *Orchestrator) Probe(ctx context.Context, rawURL string) (fetch.Metadata, error) {
	req, err := fetch.Normalize(rawURL)
	if err != nil {
		return fetch.Metadata{}, err
	}

	job, err := o.newJob(fetch.JobKindProbe, req)
	if err != nil {
		return fetch.Metadata{}, err
	}

	completion, err := o.submit(ctx, job)
	if err != nil {
		return fetch.Metadata{}, err
	}
	return completion.Meta, completion.Err
}

// Download runs the full pipeline for a URL at the requested quality and
// returns the delivery result. formatID takes precedence over quality when
// it names a concrete engine format.
func (o *Orchestrator) Download(ctx context.Context, rawURL, quality, formatID string) (fetch.Result, fetch.Metadata, error) {
	req, err := fetch.Normalize(rawURL)
	if err != nil {
		return fetch.Result{}, fetch.Metadata{}, err
	}

	job, err := o.newJob(fetch.JobKindDownload, req)
	if err != nil {
		return fetch.Result{}, fetch.Metadata{}, err
	}
	job.Quality = quality
	job.Selector, job.AudioOnly = fetch.SelectorFor(quality, formatID)
	job.OutputTemplate = o.artifacts.OutputTemplate(job.ID)

	o.logger.Info("download submitted",
		zap.String("job_id", job.ID),
		zap.String("platform", string(req.Platform)),
		zap.String("quality", quality),
		zap.Bool("audio_only", job.AudioOnly))

	completion, err := o.submit(ctx, job)
	if err != nil {
		return fetch.Result{}, fetch.Metadata{}, err
	}
	if completion.Err != nil {
		return fetch.Result{}, completion.Meta, completion.Err
	}
	return completion.Result, completion.Meta, nil
}

// idAttempts bounds the re-draws when a fresh id collides with an artifact
// already on disk.
const idAttempts = 5

func (o *Orchestrator) newJob(kind fetch.JobKind, req fetch.NormalizedRequest) (fetch.Job, error) {
	for attempt := 0; attempt < idAttempts; attempt++ {
		id, err := o.ids.NewID()
		if err != nil {
			return fetch.Job{}, fmt.Errorf("generate job id: %w", err)
		}
		if kind == fetch.JobKindDownload && o.artifacts != nil {
			if _, found, err := o.artifacts.FindByPrefix(id); err == nil && found {
				continue
			}
		}
		return fetch.Job{ID: id, Kind: kind, Request: req}, nil
	}
	return fetch.Job{}, fmt.Errorf("could not allocate an unused job id")
}

func (o *Orchestrator) submit(ctx context.Context, job fetch.Job) (fetch.Completion, error) {
	item := fetch.QueueItem{
		Job:       job,
		Reply:     make(chan fetch.Completion, 1),
		Submitted: o.clock.Now().Unix(),
	}
	if err := o.enqueuer.Enqueue(ctx, item); err != nil {
		return fetch.Completion{}, err
	}

	select {
	case completion := <-item.Reply:
		return completion, nil
	case <-ctx.Done():
		return fetch.Completion{}, fmt.Errorf("await job %s: %w", job.ID, ctx.Err())
	}
}
