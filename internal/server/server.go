// Package server exposes the story list over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Bixxler/nextech/internal/config"
	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/search"
	"github.com/Bixxler/nextech/internal/stories"
)

// StoryService is the part of stories.Service the HTTP layer uses.
type StoryService interface {
	Snapshot(ctx context.Context) (stories.Snapshot, error)
	TTL() time.Duration
	Wait()
}

// StoryIndex searches the current snapshot.
type StoryIndex interface {
	search.SnapshotSearcher
	search.Syncer
}

// Server is the echo application serving the story list.
type Server struct {
	echo    *echo.Echo
	svc     StoryService
	index   StoryIndex
	metrics http.Handler

	address         string
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithIndex enables full text search on /api/stories/search. Without one the
// endpoint falls back to substring filtering.
func WithIndex(ix StoryIndex) Option {
	return func(s *Server) {
		s.index = ix
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// New builds the routes and middleware for svc. Call Run to listen.
func New(cfg config.ServerConfig, svc StoryService, opts ...Option) *Server {
	s := &Server{
		svc:             svc,
		address:         cfg.Address,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				debuglog.WithFields(fields).WithError(v.Error).Errorf("request failed")
				return nil
			}
			debuglog.WithFields(fields).Infof("request completed")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))

	e.GET("/health", s.health)
	e.GET("/api/stories", s.listStories)
	e.GET("/api/stories/search", s.searchStories)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	s.echo = e
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr is the bound listener address once Run has started listening.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

// Run serves until ctx is canceled, then shuts down gracefully and waits for
// background cache refreshes within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		debuglog.WithFields(map[string]interface{}{"address": s.address}).Infof("starting server")
		if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		debuglog.Infof("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}

		done := make(chan struct{})
		go func() {
			s.svc.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			debuglog.Warnf("background refresh still running at shutdown")
		}
		return nil
	})

	return g.Wait()
}
