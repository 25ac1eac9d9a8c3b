// Package server provides the HTTP API for résumé matching and tailoring.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/applyease/internal/answers"
	"github.com/jonathan/applyease/internal/db"
	"github.com/jonathan/applyease/internal/matching"
	"github.com/jonathan/applyease/internal/rendering"
	"github.com/jonathan/applyease/internal/server/middleware"
	"github.com/jonathan/applyease/internal/server/ratelimit"
	"github.com/jonathan/applyease/internal/similarity"
	"github.com/jonathan/applyease/internal/tailoring"
)

// Store persists résumés and tailored résumés. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	UpsertResume(ctx context.Context, r *db.Resume) error
	GetResume(ctx context.Context, userID string) (*db.Resume, error)
	SaveTailoredResume(ctx context.Context, t *db.TailoredResume) error
	ListTailoredResumes(ctx context.Context, userID string, limit int) ([]db.TailoredResume, error)
	GetTailoredResume(ctx context.Context, userID string, id uuid.UUID) (*db.TailoredResume, error)
}

// Deps are the collaborators the server delegates to.
type Deps struct {
	// Store may be nil, in which case the per-user routes answer 503.
	Store    Store
	Scorer   *similarity.Scorer
	Tailorer *tailoring.Tailorer
	Answers  *answers.Composer
	Auth     middleware.TokenValidator
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger
}

// Options configure the HTTP surface.
type Options struct {
	Port       int
	MatchLimit int
	Geometry   rendering.Geometry
	// MaxConcurrentGenerations bounds tailoring and answer calls in flight.
	MaxConcurrentGenerations int64
	AllowedOrigins           []string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	deps       Deps
	opts       Options
	logger     *zap.Logger
	generation *semaphore.Weighted
}

// noTokens rejects every token; it stands in when no issuer is configured.
type noTokens struct{}

func (noTokens) ValidateToken(string) (string, error) {
	return "", errors.New("authentication is not configured")
}

// New wires the routes and middleware.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Auth == nil {
		deps.Auth = noTokens{}
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if deps.Tailorer == nil {
		deps.Tailorer = tailoring.New(nil, tailoring.DefaultOptions(), deps.Logger)
	}
	if deps.Answers == nil {
		deps.Answers = answers.NewComposer(nil, 0, deps.Logger)
	}
	if opts.MaxConcurrentGenerations < 1 {
		opts.MaxConcurrentGenerations = 1
	}
	if opts.MatchLimit <= 0 {
		opts.MatchLimit = matching.DefaultLimit
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		deps:       deps,
		opts:       opts,
		logger:     deps.Logger.With(zap.String("component", "server")),
		generation: semaphore.NewWeighted(opts.MaxConcurrentGenerations),
	}

	auth := middleware.AuthMiddleware(deps.Auth)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /similarity", s.handleSimilarity)
	mux.HandleFunc("POST /classify", s.handleClassify)

	mux.Handle("PUT /resume", protected(s.handleUpsertResume))
	mux.Handle("GET /resume", protected(s.handleGetResume))
	mux.Handle("GET /resume_pdf", protected(s.handleResumePDF))
	mux.Handle("POST /match", protected(s.handleMatch))
	mux.Handle("POST /tailored_resume", protected(s.handleTailor))
	mux.Handle("GET /tailored_resumes", protected(s.handleListTailored))
	mux.Handle("GET /tailored_resumes/{id}/pdf", protected(s.handleTailoredPDF))
	mux.Handle("POST /render_pdf", protected(s.handleRenderPDF))
	mux.Handle("POST /custom-answer", protected(s.handleCustomAnswer))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // generation can take most of a minute
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer s.deps.Limiter.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}

// withRateLimit rejects clients that exhausted their bucket for the endpoint.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.deps.Limiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the peer IP; forwarded headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	s.logger.Info("rate limit exceeded", zap.Int("limit", info.Limit))
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", zap.Error(err))
	}
}

// pdfResponse writes a PDF attachment.
func (s *Server) pdfResponse(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Warn("writing PDF response", zap.Error(err))
	}
}
