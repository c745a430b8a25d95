package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/audio"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/logger"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service audiodedup.Service
	config  *ServerConfig
	log     audiodedup.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	LedgerRPC      string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service audiodedup.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// saveUpload extracts the "file" part of a multipart request into the temp
// upload directory. The caller removes the file when done.
func (s *Server) saveUpload(r *http.Request) (path, originalName string, err error) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return "", "", fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", errors.New("no file uploaded")
	}
	defer file.Close()

	uploadDir := filepath.Join(s.config.TempDir, "uploads")
	if err := utils.MakeDir(uploadDir); err != nil {
		return "", "", fmt.Errorf("creating upload dir: %w", err)
	}

	originalName = header.Filename
	dst := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), utils.SanitizeFilename(originalName)))
	out, err := os.Create(dst)
	if err != nil {
		return "", "", fmt.Errorf("creating upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dst)
		return "", "", fmt.Errorf("saving upload: %w", err)
	}
	return dst, originalName, nil
}

// isExtractionError reports whether the submission failed because the audio
// itself could not be fingerprinted, as opposed to an infrastructure failure.
func isExtractionError(err error) bool {
	return errors.Is(err, fingerprint.ErrTooShort) ||
		errors.Is(err, fingerprint.ErrDegenerateSignal) ||
		errors.Is(err, audio.ErrInvalidWav) ||
		errors.Is(err, audio.ErrUnsupportedChannels)
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Audio Copyright Registry API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":      "GET /health",
			"metrics":     "GET /api/health/metrics",
			"listAudios":  "GET /api/audios",
			"submitAudio": "POST /api/audios",
			"getAudio":    "GET /api/audios/{id}",
			"deleteAudio": "DELETE /api/audios/{id}",
			"checkAudio":  "POST /api/check",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.List()
	if err != nil {
		s.log.Errorf("Failed to get record count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		RecordCount:  int64(len(records)),
		SampleRate:   s.config.SampleRate,
		LedgerRPC:    s.config.LedgerRPC,
	})
}

// handleAudios handles GET and POST /api/audios
func (s *Server) handleAudios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListAudios(w, r)
	case http.MethodPost:
		s.handleSubmitAudio(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleListAudios handles GET /api/audios
func (s *Server) handleListAudios(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.List()
	if err != nil {
		s.log.Errorf("Failed to list audios: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve audios")
		return
	}

	dtos := make([]AudioDTO, len(records))
	for i, rec := range records {
		dtos[i] = AudioDTO{
			Identifier: rec.Identifier,
			IPFSHash:   rec.IPFSHash,
			LedgerTx:   rec.LedgerTx,
			CreatedAt:  rec.CreatedAt,
		}
	}

	s.respondJSON(w, http.StatusOK, ListAudiosResponse{
		Audios: dtos,
		Count:  len(dtos),
	})
}

// handleSubmitAudio handles POST /api/audios
func (s *Server) handleSubmitAudio(w http.ResponseWriter, r *http.Request) {
	path, originalName, err := s.saveUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path)

	result, err := s.service.Submit(r.Context(), path, originalName)
	if err != nil {
		if isExtractionError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Errorf("Submission failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !result.Admitted {
		s.respondJSON(w, http.StatusConflict, SubmitResponse{
			Message:    "Audio too similar to an existing asset",
			Identifier: result.Identifier,
			Duplicate:  true,
			Similarity: result.Score * 100,
			MatchedID:  result.MatchedID,
		})
		return
	}

	s.respondJSON(w, http.StatusOK, SubmitResponse{
		Message:    "Audio registered",
		Identifier: result.Identifier,
		Duplicate:  result.Duplicate,
		Similarity: result.Score * 100,
		MatchedID:  result.MatchedID,
		IPFSHash:   result.IPFSHash,
		LedgerTx:   result.LedgerTx,
	})
}

// handleCheck handles POST /api/check
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path, _, err := s.saveUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path)

	result, err := s.service.Check(r.Context(), path)
	if err != nil {
		if isExtractionError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Errorf("Check failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, CheckResponse{
		Duplicate:  result.Duplicate,
		Similarity: result.Score * 100,
		MatchedID:  result.MatchedID,
	})
}

// handleAudio handles GET and DELETE /api/audios/{id}
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimPrefix(r.URL.Path, "/api/audios/")
	if identifier == "" || strings.Contains(identifier, "/") {
		s.respondError(w, http.StatusBadRequest, "Invalid audio identifier")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetAudio(w, r, identifier)
	case http.MethodDelete:
		s.handleDeleteAudio(w, r, identifier)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleGetAudio handles GET /api/audios/{id}
func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request, identifier string) {
	rec, err := s.service.Get(identifier)
	if errors.Is(err, audiodedup.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Audio %s not found", identifier))
		return
	}
	if err != nil {
		s.log.Errorf("Failed to get audio %s: %v", identifier, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve audio")
		return
	}

	s.respondJSON(w, http.StatusOK, AudioDTO{
		Identifier: rec.Identifier,
		IPFSHash:   rec.IPFSHash,
		LedgerTx:   rec.LedgerTx,
		CreatedAt:  rec.CreatedAt,
	})
}

// handleDeleteAudio handles DELETE /api/audios/{id}
func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request, identifier string) {
	err := s.service.Delete(identifier)
	if errors.Is(err, audiodedup.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Audio %s not found", identifier))
		return
	}
	if err != nil {
		s.log.Errorf("Failed to delete audio %s: %v", identifier, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete audio")
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteAudioResponse{
		Message:    "Audio deleted",
		Identifier: identifier,
	})
}
