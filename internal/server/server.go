// Package server exposes document building over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /metrics
//	GET  /v1/documents/{id}        build the document from the repository
//	GET  /v1/documents/{id}?from=index
//	GET  /v1/search?q=...&limit=N  query the document index
//	GET  /v1/cache/stats
//	POST /v1/cache/reset
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/store"
	"github.com/Aman-CERP/dorindex/pkg/indexer"
	"github.com/Aman-CERP/dorindex/pkg/version"
)

const (
	requestTimeout    = 30 * time.Second
	defaultLimit      = 20
	maxLimit          = 200
	readHeaderTimeout = 5 * time.Second
)

// Builder builds documents by identifier.
type Builder interface {
	BuildID(ctx context.Context, id string) (indexer.Document, error)
	Cache() *cache.Cache
}

// Index reads previously stored documents.
type Index interface {
	Get(ctx context.Context, id string) (indexer.Document, error)
	Search(ctx context.Context, query string, limit int) ([]store.Hit, error)
}

// Options configures a Server. Index and Gatherer are optional.
type Options struct {
	Addr     string
	Builder  Builder
	Index    Index
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server wraps the chi router and the http.Server.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	builder    Builder
	index      Index
	log        *slog.Logger
}

// New constructs the router and registers all routes.
func New(opts Options) (*Server, error) {
	if opts.Builder == nil {
		return nil, errors.ConfigError("server requires a builder", nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		builder: opts.Builder,
		index:   opts.Index,
		log:     opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(chimw.CleanPath)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(api chi.Router) {
		api.Get("/documents/{id}", s.getDocument)
		api.Get("/search", s.search)
		api.Get("/cache/stats", s.cacheStats)
		api.Post("/cache/reset", s.resetCache)
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Short(),
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		doc indexer.Document
		err error
	)
	switch r.URL.Query().Get("from") {
	case "", "repository":
		doc, err = s.builder.BuildID(r.Context(), id)
	case "index":
		if s.index == nil {
			writeError(w, r, errors.New(errors.ErrCodeConfigNotFound, "no document index configured", nil))
			return
		}
		doc, err = s.index.Get(r.Context(), id)
	default:
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "from must be 'repository' or 'index'", nil))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, r, errors.New(errors.ErrCodeConfigNotFound, "no document index configured", nil))
		return
	}

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer", err))
			return
		}
		limit = min(n, maxLimit)
	}

	hits, err := s.index.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (s *Server) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.builder.Cache().Stats())
}

func (s *Server) resetCache(w http.ResponseWriter, r *http.Request) {
	s.builder.Cache().Reset()
	logger(r).Info("cache_reset")
	w.WriteHeader(http.StatusNoContent)
}
