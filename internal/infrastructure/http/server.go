// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle. Handlers stay
// thin: parse the request, run the use case, serialize the result record.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xcro3dile/movexplainer-go/internal/domain/entities"
	"github.com/0xcro3dile/movexplainer-go/internal/platform/metrics"
)

// Analyzer runs one analysis request; satisfied by usecases.AnalyzeUseCase.
type Analyzer interface {
	Execute(ctx context.Context, req *entities.AnalysisRequest) *entities.AnalysisResult
}

// Server is the HTTP server for the analysis API.
type Server struct {
	analyzer Analyzer
	metrics  *metrics.Metrics
	addr     string
	log      *slog.Logger
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(analyzer Analyzer, m *metrics.Metrics, addr string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{analyzer: analyzer, metrics: m, addr: addr, log: log}
}

// analyzeRequest is the wire form of one analysis order.
type analyzeRequest struct {
	FEN      string   `json:"fen"`
	Moves    []string `json:"moves"`
	Audience string   `json:"audience"`
}

// Routes wires the public endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Analyses block on engine searches and the explanation service.
		WriteTimeout: 5 * time.Minute,
	}

	s.log.Info("movexplainer server starting", "addr", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	if req.FEN == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fen is required"})
		return
	}

	start := time.Now()
	result := s.analyzer.Execute(r.Context(), &entities.AnalysisRequest{
		FEN:      req.FEN,
		Moves:    req.Moves,
		Audience: entities.ParseAudience(req.Audience),
	})
	s.metrics.ObserveAnalysis(result.Success, time.Since(start))

	// Failures are part of the result record, not transport errors.
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
