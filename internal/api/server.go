// Package api exposes the parsing and scoring pipelines over HTTP. The
// surface is a thin shim: handlers decode uploads, call the pipeline and map
// its errors to statuses; no pipeline logic lives here.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jmwangi/parsehire/internal/enhance"
	"github.com/jmwangi/parsehire/internal/extraction"
	"github.com/jmwangi/parsehire/internal/ingestion"
	"github.com/jmwangi/parsehire/internal/llm"
	"github.com/jmwangi/parsehire/internal/parser"
	"github.com/jmwangi/parsehire/internal/scoring"
)

// maxUploadSize caps a multipart request body.
const maxUploadSize = 32 << 20

// Server handles HTTP requests.
type Server struct {
	resumes      *parser.ResumeParser
	jobDescs     *parser.JobDescriptionParser
	enhancer     *enhance.Enhancer
	orchestrator *scoring.Orchestrator
	logger       *zap.Logger
}

// NewServer builds the HTTP surface on the given extraction client.
// concurrency bounds parallel résumé extractions in scoring batches.
func NewServer(client llm.Client, logger *zap.Logger, concurrency int) *Server {
	return &Server{
		resumes:      parser.NewResumeParser(client, logger),
		jobDescs:     parser.NewJobDescriptionParser(client, logger),
		enhancer:     enhance.New(client, logger),
		orchestrator: scoring.New(client, logger, concurrency),
		logger:       logger,
	}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/parse-resume", s.handleParseResume)
	mux.HandleFunc("POST /api/parse-job-description", s.handleParseJobDescription)
	mux.HandleFunc("POST /api/job-description-enhance", s.handleEnhance)
	mux.HandleFunc("POST /api/resume-score", s.handleScore)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "parsehire",
		"endpoints": map[string]string{
			"POST /api/parse-resume":            "Extract a structured record from one resume (multipart field: file)",
			"POST /api/parse-job-description":   "Extract a structured record from one job description (multipart field: file)",
			"POST /api/job-description-enhance": "Extract and enhance a job description (multipart field: file)",
			"POST /api/resume-score":            "Score resumes against a job description (multipart fields: job_description, resumes, requirements)",
			"GET /health":                       "Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}
	rec, err := s.resumes.Parse(r.Context(), content, filename)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleParseJobDescription(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}
	rec, err := s.jobDescs.Parse(r.Context(), content, filename)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}
	rec, err := s.jobDescs.Parse(r.Context(), content, filename)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	enhanced, err := s.enhancer.Enhance(r.Context(), &rec)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	rec.Enhanced = enhanced
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("parse form: %v", err))
		return
	}

	jdContent, jdName, ok := s.formFile(w, r, "job_description")
	if !ok {
		return
	}

	headers := r.MultipartForm.File["resumes"]
	if len(headers) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one resume is required (multipart field: resumes)")
		return
	}

	req := scoring.Request{
		JobDescription: scoring.Document{Filename: jdName, Content: jdContent},
		Requirements:   r.FormValue("requirements"),
	}
	for _, h := range headers {
		content, err := readFileHeader(h)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("read %s: %v", h.Filename, err))
			return
		}
		req.Resumes = append(req.Resumes, scoring.Document{Filename: h.Filename, Content: content})
	}

	result, err := s.orchestrator.Score(r.Context(), req)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// formFile reads one uploaded file out of the request. On failure it writes
// the error response itself and returns ok=false.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, field string) (content []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile(field)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("missing upload %q: %v", field, err))
		return nil, "", false
	}
	defer file.Close()

	content, err = io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("read %s: %v", header.Filename, err))
		return nil, "", false
	}
	return content, header.Filename, true
}

func readFileHeader(h *multipart.FileHeader) ([]byte, error) {
	file, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// respondPipelineError maps pipeline failures to statuses: client mistakes
// are 4xx, a misbehaving extraction service is 502, an unreachable one 503.
func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	var (
		validationErr *extraction.ValidationError
		extractionErr *extraction.ExtractionError
		exhaustedErr  *scoring.BatchExhaustedError
	)

	switch {
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &exhaustedErr):
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    err.Error(),
			"failures": exhaustedErr.Failures,
		})
	case errors.As(err, &validationErr), errors.As(err, &extractionErr):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, llm.ErrUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, llm.ErrService):
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
