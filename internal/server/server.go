// Package server exposes the owner-scoped task store and the breakdown
// capability over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/todump/todump/internal/auth"
	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/repository"
	"github.com/todump/todump/internal/store"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Tasks   repository.TaskRepo
	TaskTx  repository.TaskTx
	Auth    auth.Authenticator
	Breaker breakdown.Breaker // nil disables AI breakdown
	Logger  *log.Logger
}

type Server struct {
	deps   Deps
	router *mux.Router
}

// New builds the router.
func New(deps Deps) *Server {
	s := &Server{deps: deps, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(s.deps.Auth, s.writeError))
	api.HandleFunc("/todos", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/todos", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/todos/bulk", s.handleCreateMany).Methods(http.MethodPost)
	api.HandleFunc("/todos", s.handleUpdate).Methods(http.MethodPatch)
	api.HandleFunc("/todos/{id}", s.handleUpdate).Methods(http.MethodPatch)
	api.HandleFunc("/todos", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/todos/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/breakdown", s.handleBreakdown).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// storeFor returns the task store of the authenticated caller.
func (s *Server) storeFor(r *http.Request) store.Store {
	return store.NewOwned(s.deps.Tasks, s.deps.TaskTx, auth.UserID(r.Context()))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logger() *log.Logger {
	if s.deps.Logger == nil {
		return log.Default()
	}
	return s.deps.Logger
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger().Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
