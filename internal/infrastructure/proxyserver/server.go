// Package proxyserver implements `kgq serve`: an HTTP service that runs
// SPARQL requests against a GraphDB-style store on behalf of the client.
package proxyserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// Config selects the listen address and the default store target.
type Config struct {
	Addr       string
	GraphDBURL string
	Repository string
	Timeout    time.Duration
}

// ConfigFrom builds a server config from the application settings.
func ConfigFrom(cfg domain.Config) Config {
	c := Config{
		Addr:       cfg.Server.Addr,
		GraphDBURL: cfg.Server.GraphDBURL,
		Repository: cfg.Server.Repository,
		Timeout:    cfg.ServerTimeout(),
	}
	if c.Addr == "" {
		c.Addr = domain.DefaultServerAddr
	}
	if c.GraphDBURL == "" {
		c.GraphDBURL = domain.DefaultGraphDBURL
	}
	if c.Repository == "" {
		c.Repository = domain.DefaultRepository
	}
	return c
}

// Server is the query proxy.
type Server struct {
	cfg     Config
	store   *GraphDB
	metrics *Metrics
	logger  ports.Logger
}

// New creates a proxy server.
func New(cfg Config, logger ports.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   NewGraphDB(cfg.Timeout),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.metrics.Middleware,
	)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/test-connection", s.handleTestConnection)
		r.Get("/repositories", s.handleRepositories)
	})
	return r
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln and shuts down gracefully when ctx ends.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.info("proxy listening", map[string]interface{}{
		"addr":       ln.Addr().String(),
		"graphdb":    s.cfg.GraphDBURL,
		"repository": s.cfg.Repository,
	})

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.info("shutting down proxy", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) info(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Server) warn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
