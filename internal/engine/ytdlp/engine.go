// Package ytdlp adapts the yt-dlp extraction engine to the fetch.Engine
// interface. All engine invocations go through here so platform-specific
// workarounds stay in one place.
package ytdlp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/fetch"
)

// Config carries the engine invocation knobs.
type Config struct {
	// Retries and FragmentRetries are passed through verbatim; yt-dlp accepts
	// "infinite" as well as numbers.
	Retries         string
	FragmentRetries string
	// SocketTimeout is the per-connection timeout in seconds.
	SocketTimeout float64
	// VersionTimeout bounds the lazy version probe.
	VersionTimeout time.Duration
}

// DefaultConfig returns the engine knobs used in production.
func DefaultConfig() Config {
	return Config{
		Retries:         "15",
		FragmentRetries: "15",
		SocketTimeout:   30,
		VersionTimeout:  10 * time.Second,
	}
}

// Engine runs yt-dlp subprocesses. It is safe for concurrent use; yt-dlp
// itself serializes nothing, so concurrency control lives with the callers.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	version string
}

// New creates an Engine. Install must have succeeded before the first call
// to Probe or Download.
func New(cfg Config, logger *zap.Logger) *Engine {
	if cfg.VersionTimeout <= 0 {
		cfg.VersionTimeout = 10 * time.Second
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Install resolves the yt-dlp binary, downloading it when absent.
func Install(ctx context.Context) error {
	if _, err := goytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install engine binary: %w", err)
	}
	return nil
}

// Probe fetches metadata for a URL without downloading media.
func (e *Engine) Probe(ctx context.Context, job fetch.Job) (fetch.Metadata, error) {
	cmd := goytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoCheckCertificates().
		GeoBypass().
		SocketTimeout(e.cfg.SocketTimeout)
	e.applyPlatform(cmd, job.Request.Platform)

	res, err := cmd.Run(ctx, job.Request.URL)
	if err != nil {
		e.logger.Warn("engine probe failed",
			zap.String("job_id", job.ID),
			zap.String("platform", string(job.Request.Platform)),
			zap.Error(err))
		return fetch.Metadata{}, &fetch.ExtractionError{Cause: err}
	}

	meta, err := parseMetadata(res.Stdout)
	if err != nil {
		return fetch.Metadata{}, &fetch.ExtractionError{Cause: err}
	}
	return meta, nil
}

// Download runs the full extraction for a job. The caller owns artifact
// resolution: a returned error still permits a recovery scan of the output
// directory, since yt-dlp can fail after writing a usable file.
func (e *Engine) Download(ctx context.Context, job fetch.Job) (fetch.Metadata, error) {
	cmd := goytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		PrintJSON().
		Format(job.Selector).
		Output(job.OutputTemplate).
		Retries(e.cfg.Retries).
		FragmentRetries(e.cfg.FragmentRetries).
		SocketTimeout(e.cfg.SocketTimeout).
		NoCheckCertificates().
		GeoBypass()

	if job.AudioOnly {
		cmd = cmd.
			ExtractAudio().
			AudioFormat("mp3").
			AudioQuality("192K")
	} else {
		cmd = cmd.
			RemuxVideo("mp4").
			MergeOutputFormat("mp4")
	}
	e.applyPlatform(cmd, job.Request.Platform)

	res, runErr := cmd.Run(ctx, job.Request.URL)
	if runErr != nil {
		e.logger.Warn("engine download failed",
			zap.String("job_id", job.ID),
			zap.String("platform", string(job.Request.Platform)),
			zap.Error(runErr))
		return fetch.Metadata{}, &fetch.ExtractionError{Cause: runErr}
	}

	meta, err := parseMetadata(res.Stdout)
	if err != nil {
		return fetch.Metadata{}, &fetch.ExtractionError{Cause: err}
	}
	return meta, nil
}

// applyPlatform attaches per-site headers and extractor arguments.
func (e *Engine) applyPlatform(cmd *goytdlp.Command, platform fetch.Platform) {
	for _, h := range platformHeaders(platform) {
		cmd.AddHeaders(h)
	}
	if args := extractorArgs(platform); args != "" {
		cmd.ExtractorArgs(args)
	}
}

// Version reports the engine binary version, probing lazily and caching the
// answer until the next Update.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version != "" {
		return e.version
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.VersionTimeout)
	defer cancel()
	v, err := e.probeVersion(ctx)
	if err != nil {
		e.logger.Warn("engine version probe failed", zap.Error(err))
		return "unknown"
	}
	e.version = v
	return v
}

// Update re-resolves the engine binary and reports old and new versions.
func (e *Engine) Update(ctx context.Context) (string, string, error) {
	old := e.Version()

	if _, err := goytdlp.Install(ctx, nil); err != nil {
		return old, old, fmt.Errorf("update engine binary: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	current, err := e.probeVersion(ctx)
	if err != nil {
		return old, old, fmt.Errorf("probe updated engine version: %w", err)
	}
	e.version = current
	e.logger.Info("engine updated",
		zap.String("old_version", old),
		zap.String("new_version", current))
	return old, current, nil
}

func (e *Engine) probeVersion(ctx context.Context) (string, error) {
	res, err := goytdlp.New().Version(ctx)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(res.Stdout)
	if v == "" {
		return "", fmt.Errorf("engine reported empty version")
	}
	return v, nil
}
