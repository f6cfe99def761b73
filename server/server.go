// Package server exposes extraction and the template store over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tsawler/drawsnap/export"
	"github.com/tsawler/drawsnap/matching"
	"github.com/tsawler/drawsnap/quality"
	"github.com/tsawler/drawsnap/runlog"
	"github.com/tsawler/drawsnap/tables"
	"github.com/tsawler/drawsnap/templates"
	"github.com/tsawler/drawsnap/tokens"
)

// Options configures a Server. Repository is required.
type Options struct {
	Address        string
	AllowedOrigins []string

	Repository *templates.Repository

	// RunLog, when set, records every extraction
	RunLog *runlog.Store

	Keywords map[string][]string
	Headers  export.HeaderMap

	Slicer        tables.Config
	Quality       quality.Config
	Matching      matching.Config
	SampleTokens  int
	MinConfidence float64

	Logger *slog.Logger
}

type Server struct {
	opts   Options
	logger *slog.Logger

	handler    http.Handler
	httpServer *http.Server
}

// New builds the router. Zero pipeline configs fall back to the defaults.
func New(opts Options) (*Server, error) {
	if opts.Repository == nil {
		return nil, errors.New("server: template repository is required")
	}
	if opts.Address == "" {
		opts.Address = ":8080"
	}
	if opts.Slicer == (tables.Config{}) {
		opts.Slicer = tables.DefaultConfig()
	}
	if opts.Quality == (quality.Config{}) {
		opts.Quality = quality.DefaultConfig()
	}
	if opts.Matching == (matching.Config{}) {
		opts.Matching = matching.DefaultConfig()
	}
	if opts.SampleTokens <= 0 {
		opts.SampleTokens = tokens.DefaultSampleSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.logRequests)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Post("/extract", s.handleExtract)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Get("/stats", s.handleTemplateStats)
		r.Get("/{vendor}", s.handleGetTemplate)
		r.Put("/{vendor}", s.handlePutTemplate)
		r.Delete("/{vendor}", s.handleDeleteTemplate)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
	})

	s.handler = r
	s.httpServer = &http.Server{
		Addr:              opts.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"templates": s.opts.Repository.Snapshot().Len(),
	})
}
