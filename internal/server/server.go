// Package server implements the depsolve HTTP API: CRUD for stored graphs
// plus query endpoints for leaves, roots, cycles, shortest paths and merge
// order. Expensive query results are cached keyed by the graph's content
// hash, so they survive until the graph itself changes.
package server

import (
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hferras/depsolve/pkg/cache"
	"github.com/hferras/depsolve/pkg/observability"
	"github.com/hferras/depsolve/pkg/store"
)

// queryTTL bounds cached query results; content-hash keys make invalidation
// implicit, the TTL only caps storage for abandoned graphs.
const queryTTL = 24 * time.Hour

// Server holds the API's dependencies.
type Server struct {
	store  store.Store
	cache  cache.Cache
	logger *charmlog.Logger
}

// New creates a server. A nil cache disables query caching; a nil logger
// discards request logs.
func New(st store.Store, c cache.Cache, logger *charmlog.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = charmlog.New(nil)
	}
	return &Server{store: st, cache: c, logger: logger}
}

// Router builds the chi router with all routes and middleware mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/graphs", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/leaves", s.handleLeaves)
			r.Get("/roots", s.handleRoots)
			r.Get("/cycles", s.handleCycles)
			r.Get("/path", s.handlePath)
			r.Get("/order", s.handleOrder)
			r.Get("/dot", s.handleDOT)
		})
	})

	return r
}

// logRequests emits one structured log line per request and feeds the HTTP
// observability hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
