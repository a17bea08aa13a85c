// Package worker implements the fetch pipeline execution loop.
package worker

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/artifact"
	"github.com/savetube/savetube/internal/fetch"
	"github.com/savetube/savetube/internal/metrics"
	"github.com/savetube/savetube/internal/progress"
)

// Worker consumes queue items and executes the fetch pipeline.
type Worker struct {
	queue     fetch.Queue
	engine    fetch.Engine
	artifacts *artifact.Store
	pacer     fetch.Pacer
	clock     fetch.Clock
	emitter   progress.Emitter
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	queue fetch.Queue,
	engine fetch.Engine,
	artifacts *artifact.Store,
	pacer fetch.Pacer,
	clock fetch.Clock,
	emitter progress.Emitter,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:     queue,
		engine:    engine,
		artifacts: artifacts,
		pacer:     pacer,
		clock:     clock,
		emitter:   emitter,
		logger:    logger,
	}
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job",
			zap.String("job_id", item.Job.ID),
			zap.String("kind", string(item.Job.Kind)))
		w.processJob(ctx, item)
	}
}

func (w *Worker) processJob(ctx context.Context, item fetch.QueueItem) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	job := item.Job
	started := w.clock.Now()
	w.emit(progress.Event{
		JobID:    job.ID,
		TS:       started,
		Stage:    progress.StageJobStart,
		Platform: string(job.Request.Platform),
		Kind:     string(job.Kind),
		URL:      job.Request.URL,
	})

	completion := w.execute(ctx, job)

	elapsed := w.clock.Now().Sub(started)
	platform := string(job.Request.Platform)
	if completion.Err != nil {
		metrics.ObserveFetchJob(platform, "error", 0)
		w.emit(progress.Event{
			JobID:    job.ID,
			TS:       w.clock.Now(),
			Stage:    progress.StageJobError,
			Platform: platform,
			Kind:     string(job.Kind),
			Dur:      elapsed,
			Note:     completion.Err.Error(),
		})
		w.logger.Warn("job failed",
			zap.String("job_id", job.ID),
			zap.String("platform", platform),
			zap.Duration("elapsed", elapsed),
			zap.Error(completion.Err))
	} else {
		metrics.ObserveFetchJob(platform, "success", completion.Result.Filesize)
		w.emit(progress.Event{
			JobID:    job.ID,
			TS:       w.clock.Now(),
			Stage:    progress.StageJobDone,
			Platform: platform,
			Kind:     string(job.Kind),
			Bytes:    completion.Result.Filesize,
			Dur:      elapsed,
		})
		w.logger.Info("job completed",
			zap.String("job_id", job.ID),
			zap.String("platform", platform),
			zap.String("filename", completion.Result.Filename),
			zap.Duration("elapsed", elapsed))
	}

	// Reply is buffered; when the submitter is already gone the completion
	// is dropped rather than leaking this goroutine.
	select {
	case item.Reply <- completion:
	default:
		w.logger.Debug("completion dropped, submitter gone", zap.String("job_id", job.ID))
	}
}

func (w *Worker) execute(ctx context.Context, job fetch.Job) fetch.Completion {
	if err := w.pacer.Wait(ctx, job.Request.Platform); err != nil {
		return fetch.Completion{Err: err}
	}

	switch job.Kind {
	case fetch.JobKindProbe:
		meta, err := w.engine.Probe(ctx, job)
		return fetch.Completion{Meta: meta, Err: err}
	case fetch.JobKindDownload:
		return w.download(ctx, job)
	default:
		return fetch.Completion{Err: fetch.NewValidationError("unknown job kind %q", job.Kind)}
	}
}

func (w *Worker) download(ctx context.Context, job fetch.Job) fetch.Completion {
	platform := string(job.Request.Platform)
	engineStart := w.clock.Now()
	w.emit(progress.Event{
		JobID:    job.ID,
		TS:       engineStart,
		Stage:    progress.StageEngineStart,
		Platform: platform,
		URL:      job.Request.URL,
	})

	meta, runErr := w.engine.Download(ctx, job)

	filename, found := w.resolveArtifact(job, meta, runErr)
	if !found {
		if runErr != nil {
			return fetch.Completion{Err: runErr}
		}
		return fetch.Completion{Err: &fetch.ExtractionError{
			Cause: errors.New("engine reported success but wrote no artifact"),
		}}
	}

	size := w.artifacts.SizeOf(filename)
	w.emit(progress.Event{
		JobID:    job.ID,
		TS:       w.clock.Now(),
		Stage:    progress.StageEngineDone,
		Platform: platform,
		Bytes:    size,
		Dur:      w.clock.Now().Sub(engineStart),
	})

	return fetch.Completion{
		Meta: meta,
		Result: fetch.Result{
			Success:     true,
			Filename:    filename,
			DownloadURL: "/download/" + filename,
			Filesize:    size,
		},
	}
}

// resolveArtifact locates the file the engine wrote for a job. The reported
// filename is tried first; audio jobs account for the post-processor swapping
// the extension to mp3. When the report is missing or stale the download
// directory is scanned for the job-id prefix, which also salvages runs where
// the engine errored after writing the file.
func (w *Worker) resolveArtifact(job fetch.Job, meta fetch.Metadata, runErr error) (string, bool) {
	if candidate := reportedFilename(job, meta); candidate != "" {
		if w.artifacts.SizeOf(candidate) > 0 {
			return candidate, true
		}
	}

	name, ok, err := w.artifacts.FindByPrefix(job.ID)
	if err != nil {
		w.logger.Error("artifact scan failed", zap.String("job_id", job.ID), zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	if runErr != nil {
		w.emit(progress.Event{
			JobID:    job.ID,
			TS:       w.clock.Now(),
			Stage:    progress.StageRecovery,
			Platform: string(job.Request.Platform),
			Note:     runErr.Error(),
		})
		w.logger.Info("recovered artifact after engine error",
			zap.String("job_id", job.ID),
			zap.String("filename", name))
	}
	return name, true
}

func reportedFilename(job fetch.Job, meta fetch.Metadata) string {
	if meta.Filename == "" {
		return ""
	}
	name := filepath.Base(meta.Filename)
	if job.AudioOnly {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + ".mp3"
	}
	return name
}

func (w *Worker) emit(evt progress.Event) {
	if w.emitter == nil {
		return
	}
	w.emitter.Emit(evt)
}
