package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/admission"
	"github.com/savetube/savetube/internal/api"
	"github.com/savetube/savetube/internal/artifact"
	"github.com/savetube/savetube/internal/clock/system"
	"github.com/savetube/savetube/internal/cms"
	"github.com/savetube/savetube/internal/config"
	"github.com/savetube/savetube/internal/dispatcher"
	engine "github.com/savetube/savetube/internal/engine/ytdlp"
	"github.com/savetube/savetube/internal/hash/sha256"
	"github.com/savetube/savetube/internal/id/shortid"
	"github.com/savetube/savetube/internal/logging"
	"github.com/savetube/savetube/internal/metrics"
	"github.com/savetube/savetube/internal/orchestrator"
	"github.com/savetube/savetube/internal/policy/ratelimit"
	"github.com/savetube/savetube/internal/progress"
	"github.com/savetube/savetube/internal/progress/sinks"
	"github.com/savetube/savetube/internal/queue/memory"
	"github.com/savetube/savetube/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP download service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewWithFile(cfg.Logging.Development, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Engine.AutoInstall {
		logger.Info("resolving extraction engine binary")
		if err := engine.Install(ctx); err != nil {
			return err
		}
	}
	eng := engine.New(cfg.EnginePolicy(), logger)

	artifacts, err := artifact.New(cfg.Downloads.Dir, sha256.New())
	if err != nil {
		return fmt.Errorf("init download directory: %w", err)
	}
	content, err := cms.New(cfg.CMS.Dir, logger)
	if err != nil {
		return fmt.Errorf("init content directory: %w", err)
	}

	promSink, err := sinks.NewPrometheusSink(nil)
	if err != nil {
		return fmt.Errorf("init progress metrics: %w", err)
	}
	recent := sinks.NewRecentSink(256)
	hub := progress.NewHub(progress.Config{
		Buffer: cfg.Fetch.ProgressBufferSize,
		Logger: logger,
	}, promSink, recent, sinks.NewLogSink(logger.Named("progress")))

	clk := system.New()
	pacer := ratelimit.New(cfg.PacingPolicy())
	q := memory.NewQueue(cfg.Fetch.QueueDepth)

	workers := make([]*worker.Worker, 0, cfg.Fetch.Concurrency)
	for i := 0; i < cfg.Fetch.Concurrency; i++ {
		workers = append(workers, worker.New(q, eng, artifacts, pacer, clk, hub, logger.Named("worker")))
	}
	disp := dispatcher.New(q, workers)
	go disp.Run(ctx)

	gate := admission.New(cfg.AdmissionPolicy(), clk, logger.Named("admission"))
	orch := orchestrator.New(disp, shortid.New(), clk, artifacts, logger.Named("orchestrator"))
	server := api.NewServer(orch, artifacts, eng, content, gate, recent, cfg, logger.Named("api"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", httpServer.Addr),
			zap.Int("workers", cfg.Fetch.Concurrency))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	q.Close()
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Warn("progress hub close incomplete", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}
