// Package rest exposes the HTTP API: resume ingestion, retrieval-augmented
// query, health, and metrics.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/domain"
	healthuc "github.com/hirelens/hirelens/internal/usecase/health"
	ingestuc "github.com/hirelens/hirelens/internal/usecase/ingest"
	queryuc "github.com/hirelens/hirelens/internal/usecase/query"
)

// Server holds the HTTP handlers over the use case services.
type Server struct {
	ingest         *ingestuc.Service
	query          *queryuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	query *queryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	maxUploadBytes int64,
) *Server {
	return &Server{
		ingest:         ingest,
		query:          query,
		health:         health,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/upload-resume", s.UploadResume)
	r.Post("/query", s.Query)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UploadResumeResponse is the payload for a successful ingestion.
type UploadResumeResponse struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	ExtractedSkills []string `json:"extractedSkills"`
}

// UploadResume handles POST /upload-resume (multipart form).
func (s *Server) UploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := ingestuc.Request{
		Name:           r.FormValue("name"),
		Role:           r.FormValue("role"),
		GitHubUsername: r.FormValue("githubUsername"),
	}

	if file, _, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		doc, readErr := io.ReadAll(file)
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "failed to read resume file")
			return
		}
		req.Document = doc
	}

	skills, err := s.ingest.Ingest(r.Context(), req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if skills == nil {
		skills = []string{}
	}
	writeJSON(w, http.StatusOK, UploadResumeResponse{
		Success:         true,
		Message:         "Resume ingested successfully",
		ExtractedSkills: skills,
	})
}

// QueryRequest is the payload for POST /query.
type QueryRequest struct {
	Messages []domain.Turn `json:"messages"`
}

// QueryResponse is the payload for a successful query.
type QueryResponse struct {
	Response string `json:"response"`
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	reply, err := s.query.Answer(r.Context(), req.Messages)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{Response: reply})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// handleError maps domain errors to HTTP responses. Validation errors carry
// their message to the client; everything else is a generic server error.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	code := "bad_request"
	if status >= http.StatusInternalServerError {
		code = "internal_error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
