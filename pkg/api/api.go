// Package api serves the planner over HTTP.
//
// # Routes
//
//	GET  /healthz     liveness and build information
//	GET  /v1/catalog  the prototype catalog in use
//	POST /v1/plan     run a scenario and return the result
//	GET  /metrics     Prometheus metrics (when a handler is configured)
//
// Every run gets its own in-memory world built from the request scenario,
// so requests never share state. Responses carry an X-Request-Id header.
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status from [errors.HTTPStatus].
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/errors"
	"github.com/matzehuels/patchplan/pkg/observability"
	"github.com/matzehuels/patchplan/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address of the serve command.
	DefaultAddr = ":8080"

	// MaxBodyBytes bounds plan request bodies.
	MaxBodyBytes = 1 << 20

	// RequestIDHeader carries the request id.
	RequestIDHeader = "X-Request-Id"
)

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// Metrics serves /metrics. Nil disables the route.
	Metrics http.Handler

	// Timeout bounds a single request. Zero means 30 seconds.
	Timeout time.Duration
}

// Server is the HTTP front end of a Runner.
type Server struct {
	runner  *pipeline.Runner
	catalog *catalog.Catalog
	logger  *log.Logger
	router  chi.Router
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.Runner.Logger
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	s := &Server{
		runner:  cfg.Runner,
		catalog: cfg.Runner.Catalog,
		logger:  cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/healthz", s.instrument("/healthz", s.handleHealth))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", s.instrument("/v1/catalog", s.handleCatalog))
		r.Post("/plan", s.instrument("/v1/plan", s.handlePlan))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// requestID assigns every request a uuid, reusing a client-supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument reports a route to the API hooks and the log.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.API()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, route)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, rec.status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", d,
			"id", w.Header().Get(RequestIDHeader))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), map[string]ErrorBody{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}
