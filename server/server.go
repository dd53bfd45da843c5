// Package server - HTTP surface of the video analysis service. Thin
// plumbing: request validation, upload lifecycle, persistence and
// metrics wiring around the motion engine.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/visionguard/visionguard/config"
	"github.com/visionguard/visionguard/engine"
	"github.com/visionguard/visionguard/metrics"
	"github.com/visionguard/visionguard/store"
	"github.com/visionguard/visionguard/validate"
)

// Server wires the engine to its collaborators.
type Server struct {
	cfg       config.Settings
	store     *store.Store
	metrics   *metrics.Collector
	analyzer  *engine.Analyzer
	validator *validate.Validator
}

// New builds a Server, constructing the engine from the service
// settings.
func New(cfg config.Settings, st *store.Store, mc *metrics.Collector) (*Server, error) {
	params := engine.DefaultParams()
	params.SampleRate = cfg.FrameSampleRate
	params.PixelChangeThreshold = cfg.MotionThreshold
	params.ProcessingWidth = cfg.ProcessingWidth
	params.ProcessingHeight = cfg.ProcessingHeight

	analyzer, err := engine.New(params)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		store:     st,
		metrics:   mc,
		analyzer:  analyzer,
		validator: validate.New(cfg.MaxVideoSizeMB),
	}, nil
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	})

	return r
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[server] shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
