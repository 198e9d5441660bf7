package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/backend/handlers"
	"github.com/cecil-the-coder/ai-contingency/pkg/backend/middleware"
	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/monitor"
)

// Server is the HTTP front end of a dispatcher.
type Server struct {
	config     backendtypes.BackendConfig
	engine     *gin.Engine
	httpServer *http.Server
	dispatcher *contingency.Dispatcher
	providers  handlers.ProviderSource
	monitor    *monitor.Monitor
	logger     logrus.FieldLogger
}

// Option configures a Server.
type Option func(*Server)

// WithMonitor exposes the monitor's snapshot on /api/providers/health and stops the
// monitor on Shutdown.
func WithMonitor(m *monitor.Monitor) Option {
	return func(s *Server) {
		s.monitor = m
	}
}

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server dispatching over the providers supplied by providers.
func NewServer(config backendtypes.BackendConfig, d *contingency.Dispatcher, providers handlers.ProviderSource, opts ...Option) *Server {
	s := &Server{
		config:     config,
		dispatcher: d,
		providers:  providers,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.applyMiddleware()
	s.setupRoutes()

	return s
}

// applyMiddleware installs the chain in execution order:
// Recovery -> RequestID -> Logging -> CORS -> Auth -> handler
func (s *Server) applyMiddleware() {
	s.engine.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
		middleware.Auth(s.config.Auth),
	)
}

func (s *Server) setupRoutes() {
	var health handlers.HealthSource
	if s.monitor != nil {
		health = s.monitor
	}

	healthHandler := handlers.NewHealthHandler(s.providers, s.config.Server.Version)
	providerHandler := handlers.NewProviderHandler(s.dispatcher, s.providers, health, s.logger)
	dispatchHandler := handlers.NewDispatchHandler(s.dispatcher, s.providers, s.logger)
	statsHandler := handlers.NewStatsHandler(s.dispatcher)

	s.engine.GET("/health", healthHandler.Health)

	api := s.engine.Group("/api")
	api.GET("/providers", providerHandler.ListProviders)
	api.GET("/providers/health", providerHandler.Health)
	api.POST("/providers/:key/test", providerHandler.TestProvider)
	api.POST("/dispatch", dispatchHandler.Dispatch)
	api.GET("/stats", statsHandler.Stats)
}

// Handler returns the fully wired http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	return s.prepare().ListenAndServe()
}

func (s *Server) prepare() *http.Server {
	addr := s.config.Server.Addr()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"addr":      addr,
		"version":   s.config.Server.Version,
		"providers": len(s.providers.Providers()),
		"event":     "server_started",
	}).Info("Starting server")

	return s.httpServer
}

// Shutdown stops the monitor, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.WithField("event", "server_stopping").Info("Shutting down server")

	if s.monitor != nil {
		s.monitor.Stop()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.logger.WithField("event", "server_stopped").Info("Server shutdown complete")
	return nil
}

// ListenAndServeWithGracefulShutdown serves until ctx is done, then shuts down within
// ShutdownTimeout.
func (s *Server) ListenAndServeWithGracefulShutdown(ctx context.Context) error {
	srv := s.prepare()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		timeout := s.config.Server.ShutdownTimeout
		if timeout == 0 {
			timeout = backendtypes.DefaultShutdownTimeout
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	}
}
