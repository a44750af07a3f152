// Package server provides the gateway's HTTP listener and routing table.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"alpharesearch/gateway/pkg/config"
	"alpharesearch/gateway/pkg/proxy/handlers"
	"alpharesearch/gateway/pkg/proxy/middleware"
	"alpharesearch/gateway/pkg/telemetry/health"
	"alpharesearch/gateway/pkg/telemetry/metrics"
)

// Server is the gateway's HTTP server. It owns the routing table and the
// middleware chain and blocks in Start until shutdown.
type Server struct {
	config       *config.Config
	proxy        *handlers.Proxy
	checker      *health.Checker
	collector    *metrics.Collector
	version      health.VersionInfo
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics attaches a metrics collector. Routes are instrumented and
// the exposition endpoint is registered at the configured path.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithHealthChecker attaches a readiness checker for /readyz.
func WithHealthChecker(c *health.Checker) Option {
	return func(s *Server) { s.checker = c }
}

// WithVersion sets the build information served at /version.
func WithVersion(info health.VersionInfo) Option {
	return func(s *Server) { s.version = info }
}

// NewServer creates the gateway server.
func NewServer(cfg *config.Config, proxy *handlers.Proxy, opts ...Option) *Server {
	s := &Server{
		config:       cfg,
		proxy:        proxy,
		checker:      health.New(0),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.config.Server.ListenAddress,
			"backend", s.config.Backend.BaseURL(),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop requests a shutdown from another goroutine.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures the routing table and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Proxied backend routes. The literal "list" pattern wins over the
	// "{filename}" wildcard for GET /api/research/wechat/list.
	s.handle(mux, "GET /api/research/wechat/list", s.proxy.ListArticles)
	s.handle(mux, "GET /api/research/wechat/{filename}", s.proxy.GetArticle)
	s.handle(mux, "DELETE /api/research/wechat/{filename}", s.proxy.DeleteArticle)
	s.handle(mux, "POST /api/research/wechat/create", s.proxy.CreateArticle)
	s.handle(mux, "POST /api/research/wechat/generate", s.proxy.GenerateArticle)
	s.handle(mux, "POST /api/research/search/theme", s.proxy.SearchTheme)
	s.handle(mux, "GET /api/market/quotes", s.proxy.Quotes)
	s.handle(mux, "GET /api/market/quote/{symbol}", s.proxy.Quote)
	s.handle(mux, "GET /api/market/history/{symbol}", s.proxy.History)
	s.handle(mux, "GET /api/market/trending", s.proxy.Trending)
	s.handle(mux, "GET /api/research/papers", s.proxy.ListPapers)
	s.handle(mux, "GET /api/research/papers/{id}", s.proxy.GetPaper)
	s.handle(mux, "GET /api/research/stats", s.proxy.Stats)
	s.handle(mux, "GET /api/research/logs/{type}", s.proxy.TailLog)

	// Operational endpoints.
	mux.Handle("GET /healthz", s.checker.LivenessHandler())
	mux.Handle("GET /readyz", s.checker.ReadinessHandler())
	mux.Handle("GET /version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))

	if s.collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux

	// Request ID wraps logging so log lines carry the correlation ID.
	corsConfig := s.convertCORSConfig()
	handler = middleware.CORS(corsConfig)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// handle registers one proxied route, instrumented per pattern when
// metrics are enabled.
func (s *Server) handle(mux *http.ServeMux, pattern string, handlerFunc http.HandlerFunc) {
	var handler http.Handler = handlerFunc
	if s.collector != nil && s.config.Telemetry.Metrics.Enabled {
		handler = s.collector.InstrumentRoute(pattern, handler)
	}
	mux.Handle(pattern, handler)
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig,
// filling empty lists from the middleware defaults.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	defaults := middleware.DefaultCORSConfig()

	converted := &middleware.CORSConfig{
		Enabled:        s.config.CORS.Enabled,
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: s.config.CORS.AllowedMethods,
		AllowedHeaders: s.config.CORS.AllowedHeaders,
		ExposedHeaders: s.config.CORS.ExposedHeaders,
		MaxAge:         s.config.CORS.MaxAge,
	}
	if len(converted.AllowedOrigins) == 0 {
		converted.AllowedOrigins = defaults.AllowedOrigins
	}
	if len(converted.AllowedMethods) == 0 {
		converted.AllowedMethods = defaults.AllowedMethods
	}
	if len(converted.AllowedHeaders) == 0 {
		converted.AllowedHeaders = defaults.AllowedHeaders
	}
	if len(converted.ExposedHeaders) == 0 {
		converted.ExposedHeaders = defaults.ExposedHeaders
	}
	if converted.MaxAge == 0 {
		converted.MaxAge = defaults.MaxAge
	}
	return converted
}
