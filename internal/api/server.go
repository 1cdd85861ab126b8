package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/oceanwatch/internal/clients"
	"github.com/spacesedan/oceanwatch/internal/hazards"
	"github.com/spacesedan/oceanwatch/internal/models"
	"github.com/spacesedan/oceanwatch/internal/ratelimit"
)

// Analyzer runs one fetch-classify-aggregate invocation.
type Analyzer interface {
	FetchAndAnalyze(ctx context.Context, hazard, location string, maxResults int) (*models.FetchResponse, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
}

// Server is the thin request-routing layer over the pipeline. The only
// user-visible failures are "please retry later" and "upstream unavailable";
// everything else the pipeline absorbs.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	classifier Classifier
}

func NewServer(addr string, analyzer Analyzer, classifier Classifier) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer:   analyzer,
		classifier: classifier,
	}

	mux.HandleFunc("GET /api/v1/posts", s.handlePosts)
	mux.HandleFunc("POST /api/v1/classify", s.handleClassify)
	mux.HandleFunc("POST /api/v1/keywords", s.handleKeywords)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	slog.Info("[API] Server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	hazard := query.Get("hazard")
	location := query.Get("location")

	maxResults := clients.DEFAULT_MAX_RESULTS
	if raw := query.Get("max_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_results must be a positive integer"})
			return
		}
		maxResults = parsed
	}

	resp, err := s.analyzer.FetchAndAnalyze(r.Context(), hazard, location, maxResults)
	if err != nil {
		var throttled *ratelimit.ThrottledError
		switch {
		case errors.As(err, &throttled):
			w.Header().Set("Retry-After", strconv.Itoa(throttled.WaitSeconds()))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":               throttled.Error(),
				"retry_after_seconds": throttled.WaitSeconds(),
			})
		case errors.Is(err, clients.ErrRetriesExhausted):
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream search unavailable"})
		default:
			slog.Error("[API] Fetch-and-analyze failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Classify(r.Context(), text))
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"keyword_frequency": hazards.ExtractKeywords(text),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body must be JSON with a non-empty text field"})
		return "", false
	}
	return req.Text, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
