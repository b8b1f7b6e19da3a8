package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prodscan/prodscan"
	"golang.org/x/time/rate"
)

// ShutdownTimeout is the time allowed for graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Analyzer runs the product-mention pipeline for a URL.
// It is satisfied by analyze.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*prodscan.Analysis, error)
}

// Server exposes the analysis pipeline over HTTP and serves the bundled
// front-end assets.
type Server struct {
	server *http.Server

	// Addr is the bind address, e.g. ":8080".
	Addr string

	// Analyzer runs the pipeline for POST /api/analyze.
	Analyzer Analyzer

	// Oracle is consulted for the health endpoint's model status.
	Oracle prodscan.EntityOracle

	// StaticDir, when set, is served for non-API paths with an
	// index.html fallback for unknown paths.
	StaticDir string

	Logger *slog.Logger

	limiter *rate.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStaticDir enables front-end asset serving from dir.
func WithStaticDir(dir string) ServerOption {
	return func(s *Server) {
		s.StaticDir = dir
	}
}

// WithRateLimit applies a global token-bucket limit to the analyze
// endpoint. Requests beyond the limit receive 429.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewServer creates a Server around the analyzer and oracle.
func NewServer(addr string, analyzer Analyzer, oracle prodscan.EntityOracle, opts ...ServerOption) *Server {
	s := &Server{
		Addr:     addr,
		Analyzer: analyzer,
		Oracle:   oracle,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Addr:    s.Addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/", s.staticHandler())
	return s.recoverPanics(s.tagRequest(mux))
}

// ListenAndServe binds the listener and blocks until Close is called or
// serving fails. A graceful Close returns nil.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// analyzeRequest is the POST /api/analyze request body.
type analyzeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeJSON(w, http.StatusBadRequest, &prodscan.Analysis{
			Error:   true,
			Results: []prodscan.ScoredResult{},
			Message: "URL is required.",
		})
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		s.writeJSON(w, http.StatusBadRequest, &prodscan.Analysis{
			Error:   true,
			Results: []prodscan.ScoredResult{},
			Message: "URL must start with http:// or https://.",
		})
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.writeJSON(w, http.StatusTooManyRequests, &prodscan.Analysis{
			Error:   true,
			Results: []prodscan.ScoredResult{},
			Message: "Too many requests.",
		})
		return
	}

	begin := time.Now()
	analysis, err := s.Analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		// Details are logged server-side only; callers get a generic
		// message.
		s.Logger.Error("analysis failed",
			"request_id", requestID(r),
			"url", req.URL,
			"err", err,
		)
		s.writeJSON(w, http.StatusInternalServerError, &prodscan.Analysis{
			Error:   true,
			Results: []prodscan.ScoredResult{},
			Message: "Internal server error.",
		})
		return
	}

	s.Logger.Info("analysis completed",
		"request_id", requestID(r),
		"url", req.URL,
		"total_titles", analysis.TotalTitles,
		"products", analysis.Products,
		"duration", time.Since(begin),
	)
	s.writeJSON(w, http.StatusOK, analysis)
}

// healthResponse is the GET /health response body.
type healthResponse struct {
	Status      string `json:"status"`
	ModelStatus string `json:"model_status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modelStatus := "not_loaded"
	if s.Oracle != nil && s.Oracle.Loaded() {
		modelStatus = "loaded"
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		ModelStatus: modelStatus,
	})
}

// staticHandler serves the bundled front-end. Unknown paths fall back to
// index.html so client-side routing keeps working.
func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.StaticDir == "" {
			http.NotFound(w, r)
			return
		}

		name := filepath.Join(s.StaticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}
		http.ServeFile(w, r, filepath.Join(s.StaticDir, "index.html"))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("failed to encode response", "err", err)
	}
}

// requestIDHeader carries the per-request UUID assigned by tagRequest.
const requestIDHeader = "X-Request-Id"

// tagRequest assigns every request a UUID, echoed in the response and
// used to correlate log lines.
func (s *Server) tagRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		r.Header.Set(requestIDHeader, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// recoverPanics converts handler panics into a generic 500 so raw
// failure details never reach callers.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.Logger.Error("panic in handler",
					"request_id", requestID(r),
					"path", r.URL.Path,
					"panic", p,
				)
				s.writeJSON(w, http.StatusInternalServerError, &prodscan.Analysis{
					Error:   true,
					Results: []prodscan.ScoredResult{},
					Message: "Internal server error.",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
