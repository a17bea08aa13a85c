package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/fetch"
	"github.com/savetube/savetube/internal/logging"
)

const (
	appVersion = "1.0.0"

	defaultLogLines = 100
	maxLogLines     = 1000
)

type mediaRequest struct {
	URL      string `json:"url"`
	Quality  string `json:"quality"`
	FormatID string `json:"format_id"`
}

func decodeMediaRequest(r *http.Request) (mediaRequest, error) {
	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return mediaRequest{}, fetch.NewValidationError("invalid JSON body")
	}
	if req.URL == "" {
		return mediaRequest{}, fetch.NewValidationError("url is required")
	}
	return req, nil
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMediaRequest(r)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	meta, err := s.orch.Probe(r.Context(), req.URL)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title":      meta.Title,
		"thumbnail":  meta.Thumbnail,
		"duration":   meta.Duration,
		"uploader":   meta.Uploader,
		"view_count": meta.ViewCount,
		"like_count": meta.LikeCount,
		"extractor":  meta.Extractor,
		"formats":    fetch.FormatOptions(),
	})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMediaRequest(r)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	if req.Quality == "" {
		req.Quality = fetch.QualityBest
	}

	result, meta, err := s.orch.Download(r.Context(), req.URL, req.Quality, req.FormatID)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      result.Success,
		"filename":     result.Filename,
		"download_url": result.DownloadURL,
		"filesize":     result.Filesize,
		"title":        meta.Title,
	})
}

// deliver streams a finished artifact. The filename token is sanitized and
// containment-checked before any filesystem access.
func (s *Server) deliver(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	path, err := s.artifacts.Resolve(name)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	// The sanitized basename goes into headers, never the raw token.
	clean := filepath.Base(path)

	if etag, err := s.artifacts.Checksum(clean); err == nil && etag != "" {
		quoted := `"` + etag + `"`
		if r.Header.Get("If-None-Match") == quoted {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", quoted)
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+clean+"\"")
	http.ServeFile(w, r, path)
}

func (s *Server) supportedSites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"platforms": []string{
			string(fetch.PlatformYouTube),
			string(fetch.PlatformTikTok),
			string(fetch.PlatformInstagram),
		},
		"formats": fetch.FormatOptions(),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	totalBytes, files, err := s.artifacts.Stats()
	if err != nil {
		s.logger.Error("download directory stats failed", zap.Error(err))
	}

	payload := map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        appVersion,
		"go_version":     runtime.Version(),
		"engine_version": s.engine.Version(),
		"downloads": map[string]any{
			"files":       files,
			"total_bytes": totalBytes,
		},
	}
	if s.recent != nil {
		done, failed := s.recent.Completed()
		payload["recent_jobs"] = map[string]int{
			"completed": done,
			"failed":    failed,
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) updateEngine(w http.ResponseWriter, r *http.Request) {
	oldVersion, newVersion, err := s.engine.Update(r.Context())
	if err != nil {
		s.logger.Error("engine update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "engine update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"old_version": oldVersion,
		"new_version": newVersion,
		"updated":     oldVersion != newVersion,
	})
}

func (s *Server) cleanupDownloads(w http.ResponseWriter, _ *http.Request) {
	deleted, freed, err := s.artifacts.Purge()
	if err != nil {
		s.logger.Error("download cleanup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	s.logger.Info("download directory cleaned",
		zap.Int("deleted", deleted),
		zap.Int64("freed_bytes", freed))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"deleted":     deleted,
		"freed_bytes": freed,
	})
}

func (s *Server) logs(w http.ResponseWriter, r *http.Request) {
	lines := defaultLogLines
	if raw := r.URL.Query().Get("lines"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "lines must be a positive integer")
			return
		}
		lines = parsed
	}
	if lines > maxLogLines {
		lines = maxLogLines
	}

	entries, err := logging.Tail(s.cfg.Logging.File, lines)
	if err != nil {
		s.logger.Error("log tail failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": entries,
		"count": len(entries),
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.content.Get(chi.URLParam(r, "document"))
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateDocument(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeFetchError(w, fetch.NewValidationError("invalid JSON body"))
		return
	}

	doc, err := s.content.Merge(chi.URLParam(r, "document"), patch)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
