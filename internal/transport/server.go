// Package transport carries remote delegate invocations over HTTP. The
// server hosts registered delegates; the client implements the
// dispatch.Transport interface against one. Both sides preserve failure
// shape, so remote authorization denials surface as the same typed error a
// local denial produces.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/dispatch"
	"github.com/opforge/opforge/internal/transport/middleware"
)

// Config holds the delegate host configuration.
type Config struct {
	Host              string
	Port              int
	ShutdownTimeout   time.Duration
	CORSOrigins       []string
	RequestsPerMinute int
	MaxBodySize       int64 // bytes
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		ShutdownTimeout:   30 * time.Second,
		CORSOrigins:       []string{"*"},
		RequestsPerMinute: 600,
		MaxBodySize:       4 * 1024 * 1024, // 4MB
	}
}

// Server hosts registered delegates over HTTP. It always executes the local
// strategy of the delegate it serves — the server side is where remote
// operations come to run.
type Server struct {
	cfg        Config
	router     chi.Router
	registry   *dispatch.Registry
	tokens     *TokenService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server, wires up routes and middleware, and returns it ready
// to listen. tokens may be nil to disable authentication.
func New(cfg Config, registry *dispatch.Registry, tokens *TokenService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		tokens:   tokens,
		logger:   logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.cfg.RequestsPerMinute > 0 {
		r.Use(middleware.RateLimit(s.cfg.RequestsPerMinute))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1", func(r chi.Router) {
		if s.tokens != nil {
			r.Use(middleware.Authenticate(s.tokens))
		}
		r.Get("/delegate", s.handleListDelegates)
		r.Post("/delegate/{delegateID}", s.handleInvoke)
	})

	s.router = r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz reports ready once the registry holds at least one delegate.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status, httpStatus := "ok", http.StatusOK
	if len(s.registry.DelegateIDs()) == 0 {
		status, httpStatus = "no delegates registered", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{"status": status})
}

func (s *Server) handleListDelegates(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.DelegateIDs()
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		plan, ok := s.registry.Plan(id)
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"delegate_id": id,
			"type":        plan.TypeName,
			"operation":   plan.Name,
			"remote":      plan.IsRemote,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"delegates": out})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	delegateID := chi.URLParam(r, "delegateID")

	var req dispatch.RemoteRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	call := &dispatch.Call{
		TypeName:  req.TypeName,
		Operation: req.Operation,
		Principal: middleware.GetPrincipal(r.Context()),
		Target:    req.Target,
		Args:      req.Args,
	}

	result, err := s.registry.CallLocal(r.Context(), delegateID, call)
	if err != nil {
		s.writeInvokeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, callResponse{Result: result})
}

// writeInvokeError maps invocation failures onto the error envelope. Denials
// keep their full structure so the client can rebuild the typed error.
func (s *Server) writeInvokeError(w http.ResponseWriter, err error) {
	var denied *authz.DeniedError
	switch {
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: errorDetail{
			Code:    http.StatusForbidden,
			Message: denied.Error(),
			Denied:  deniedFromError(denied),
		}})
	case errors.Is(err, dispatch.ErrNotRegistered):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received, then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("delegate host starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("delegate host stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
