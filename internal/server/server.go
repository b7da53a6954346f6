// Package server exposes the session engine over HTTP/JSON.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/engine"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	maxBodyBytes      = 1 << 20
)

// RecipeSaver is implemented by recipe sources that accept new recipes.
type RecipeSaver interface {
	Save(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error)
}

// Server serves the cookalong HTTP API.
type Server struct {
	manager    *engine.Manager
	recipes    domain.RecipeSource
	classifier domain.Classifier
	log        *logger.Logger

	httpServer *http.Server
}

// New creates a server listening on addr. recipes and classifier may be
// nil, in which case the routes that need them answer 501.
func New(addr string, manager *engine.Manager, recipes domain.RecipeSource, classifier domain.Classifier, log *logger.Logger) *Server {
	s := &Server{
		manager:    manager,
		recipes:    recipes,
		classifier: classifier,
		log:        log.Named("http"),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return otelhttp.NewHandler(s.logRequests(mux), "cookalong.http")
}

// RegisterRoutes registers the API endpoints on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/step", s.handleStep)
	mux.HandleFunc("POST /sessions/{id}/jump", s.handleJump)
	mux.HandleFunc("POST /sessions/{id}/timers", s.handleAddTimer)
	mux.HandleFunc("POST /sessions/{id}/timers/{timer}/{action}", s.handleTimerAction)
	mux.HandleFunc("POST /sessions/{id}/notes", s.handleAddNote)
	mux.HandleFunc("POST /sessions/{id}/command", s.handleCommand)
	mux.HandleFunc("POST /sessions/{id}/query", s.handleQuery)

	mux.HandleFunc("GET /recipes", s.handleListRecipes)
	mux.HandleFunc("GET /recipes/{id}", s.handleGetRecipe)
	mux.HandleFunc("POST /recipes", s.handleSaveRecipe)
}

// ListenAndServe runs the HTTP server until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.log.Info("listening on %s", s.httpServer.Addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.log.Info("http server stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
