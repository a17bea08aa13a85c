// Package api exposes the HTTP interface for the download service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/admission"
	"github.com/savetube/savetube/internal/artifact"
	"github.com/savetube/savetube/internal/cms"
	"github.com/savetube/savetube/internal/config"
	"github.com/savetube/savetube/internal/fetch"
	"github.com/savetube/savetube/internal/metrics"
	"github.com/savetube/savetube/internal/orchestrator"
	"github.com/savetube/savetube/internal/progress/sinks"
)

// Server wires HTTP handlers to the orchestrator and stores.
type Server struct {
	router    chi.Router
	orch      *orchestrator.Orchestrator
	artifacts *artifact.Store
	engine    fetch.Engine
	content   *cms.Store
	recent    *sinks.RecentSink
	cfg       config.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	orch *orchestrator.Orchestrator,
	artifacts *artifact.Store,
	engine fetch.Engine,
	content *cms.Store,
	gate *admission.Controller,
	recent *sinks.RecentSink,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		orch:      orch,
		artifacts: artifacts,
		engine:    engine,
		content:   content,
		recent:    recent,
		cfg:       cfg,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(corsMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/api/health", s.health)
	r.Get("/api/supported-sites", s.supportedSites)
	r.Get("/download/{filename}", s.deliver)

	// The expensive extraction endpoints sit behind admission control.
	r.Group(func(r chi.Router) {
		r.Use(admission.Gate(gate, logger))
		r.With(timeoutMiddleware(cfg.ProbeTimeout())).Post("/api/get-info", s.getInfo)
		r.With(timeoutMiddleware(cfg.RequestTimeout())).Post("/api/download", s.download)
	})

	r.Route("/api/cms/{document}", func(r chi.Router) {
		r.Get("/", s.getDocument)
		r.Post("/", s.updateDocument)
	})

	r.Post("/api/update-engine", s.updateEngine)
	r.Post("/api/cleanup-downloads", s.cleanupDownloads)
	r.Get("/api/logs", s.logs)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFetchError maps pipeline errors to client responses. Internal causes
// are never echoed back.
func (s *Server) writeFetchError(w http.ResponseWriter, err error) {
	var validationErr *fetch.ValidationError
	var extractionErr *fetch.ExtractionError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Reason)
	case errors.Is(err, fetch.ErrUnsupportedPlatform):
		writeError(w, http.StatusBadRequest, "this platform is not supported")
	case errors.As(err, &extractionErr):
		writeError(w, http.StatusBadRequest, "could not process this URL; the media may be private or removed")
	case errors.Is(err, fetch.ErrForbidden):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, fetch.ErrNotFound):
		writeError(w, http.StatusNotFound, "file not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "processing timed out")
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
