package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/visionguard/visionguard/config"
	"github.com/visionguard/visionguard/store"
	"github.com/visionguard/visionguard/validate"
	"github.com/visionguard/visionguard/video"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type listResponse struct {
	Total int              `json:"total"`
	Items []store.Analysis `json:"items"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errType, message string, details map[string]any) {
	writeJSON(w, status, errorResponse{Error: errType, Message: message, Details: details})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    config.AppName,
		"version": config.AppVersion,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	status := "healthy"
	httpStatus := http.StatusOK
	if err := s.store.Ping(); err != nil {
		database = "disconnected"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]string{
		"status":   status,
		"service":  config.AppName,
		"version":  config.AppVersion,
		"database": database,
	})
}

// handleAnalyze runs the full upload pipeline: save the file, validate
// it, analyze, persist the result, update metrics, clean up.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", "multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	log.Printf("[api] received video for analysis: %s", header.Filename)

	videoPath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		log.Printf("[api] saving upload failed: %v", err)
		s.metrics.RecordProcessingError("UploadError")
		writeError(w, http.StatusInternalServerError, "InternalServerError", "failed to store uploaded file", nil)
		return
	}
	defer func() {
		if err := os.Remove(videoPath); err != nil {
			log.Printf("[api] cleanup of %s failed: %v", videoPath, err)
		}
	}()

	if err := s.validator.Validate(videoPath); err != nil {
		s.rejectInvalidUpload(w, err)
		return
	}

	src, err := video.Open(videoPath)
	if err != nil {
		log.Printf("[api] invalid video %s: %v", header.Filename, err)
		s.metrics.RecordProcessingError("InvalidVideoError")
		writeError(w, http.StatusUnprocessableEntity, "InvalidVideoError", err.Error(), nil)
		return
	}
	defer src.Close()

	result, err := s.analyzer.Analyze(r.Context(), src)
	if err != nil {
		log.Printf("[api] processing error for %s: %v", header.Filename, err)
		s.metrics.RecordProcessingError("VideoProcessingError")
		writeError(w, http.StatusInternalServerError, "VideoProcessingError", err.Error(), nil)
		return
	}

	analysis, err := s.store.Create(header.Filename, result.MotionDetected,
		result.FramesAnalyzed, result.ProcessingSeconds(), store.StatusCompleted, nil)
	if err != nil {
		log.Printf("[api] persisting analysis failed: %v", err)
		s.metrics.RecordProcessingError("DatabaseError")
		writeError(w, http.StatusInternalServerError, "InternalServerError", "failed to persist analysis result", nil)
		return
	}

	s.metrics.RecordVideoProcessed()
	s.metrics.UpdateProcessingTime(result.ProcessingSeconds())
	if result.MotionDetected {
		s.metrics.RecordMotionDetected()
	}

	log.Printf("[api] analysis saved: id=%d motion=%t frames=%d time=%.2fs",
		analysis.ID, analysis.MotionDetected, analysis.FramesAnalyzed, analysis.ProcessingTime)
	writeJSON(w, http.StatusOK, analysis)
}

// rejectInvalidUpload maps validation failures to the API's status
// codes: 413 for oversized files, 415 for unsupported formats, 422 for
// files that are not videos at all.
func (s *Server) rejectInvalidUpload(w http.ResponseWriter, err error) {
	var tooLarge *validate.TooLargeError
	var unsupported *validate.UnsupportedFormatError

	switch {
	case errors.As(err, &tooLarge):
		s.metrics.RecordProcessingError("VideoTooLargeError")
		writeError(w, http.StatusRequestEntityTooLarge, "VideoTooLargeError", err.Error(), map[string]any{
			"size_mb":     tooLarge.SizeMB,
			"max_size_mb": tooLarge.MaxSizeMB,
		})
	case errors.As(err, &unsupported):
		s.metrics.RecordProcessingError("UnsupportedFormatError")
		writeError(w, http.StatusUnsupportedMediaType, "UnsupportedFormatError", err.Error(), map[string]any{
			"format": unsupported.Format,
		})
	default:
		s.metrics.RecordProcessingError("InvalidVideoError")
		writeError(w, http.StatusUnprocessableEntity, "InvalidVideoError", err.Error(), nil)
	}
}

// saveUpload copies the uploaded stream into the upload directory
// under a collision-free name.
func (s *Server) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}

	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+"_"+filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadSize()+1)); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "write upload file")
	}
	return path, nil
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	status := r.URL.Query().Get("status")

	items, err := s.store.List(skip, limit, status)
	if err != nil {
		log.Printf("[api] listing analyses failed: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "failed to list analyses", nil)
		return
	}
	total, err := s.store.CountTotal()
	if err != nil {
		log.Printf("[api] counting analyses failed: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "failed to count analyses", nil)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Total: total, Items: items})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", "analysis id must be an integer", nil)
		return
	}

	analysis, err := s.store.GetByID(id)
	if err != nil {
		log.Printf("[api] fetching analysis %d failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "failed to fetch analysis", nil)
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "NotFound",
			"Analysis with ID "+strconv.FormatInt(id, 10)+" not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
