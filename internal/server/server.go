package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	httpapi "github.com/GriffinCanCode/framerelay/internal/api/http"
	"github.com/GriffinCanCode/framerelay/internal/api/middleware"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/config"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/framerelay/internal/transport"
)

// Server wraps the HTTP server and the bridge behind it
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	bridge  *Bridge
	router  *gin.Engine
	http    *http.Server
}

// NewLogger builds the logger described by cfg
func NewLogger(cfg config.LogConfig) (*logging.Logger, error) {
	return logging.New(logging.Config{Level: cfg.Level, Development: cfg.Development})
}

// NewServer creates a new server instance. A nil transport selects the
// default websocket/NATS mux.
func NewServer(cfg *config.Config, t transport.Transport, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing framerelay server",
		zap.String("addr", cfg.Addr()),
		zap.String("lookup_url", cfg.Lookup.URL),
		zap.String("target_url", cfg.Lookup.TargetURL),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("framerelay", logger)

	bridge, err := NewBridge(cfg, t, logger, metrics, tracer)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := httpapi.NewHandlers(bridge.Relay, bridge.Adapter, logger)
	httpapi.RegisterRoutes(router, handlers, metrics)

	logger.Info("Server initialized successfully")

	return &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		bridge:  bridge,
		router:  router,
		http: &http.Server{
			Addr:    cfg.Addr(),
			Handler: router,
		},
	}, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Bridge returns the bridge served by s
func (s *Server) Bridge() *Bridge {
	return s.bridge
}

// Run readies the bridge and serves HTTP until ctx is done, then shuts down
func (s *Server) Run(ctx context.Context) error {
	// a failed lookup is logged by the adapter; /bridge/reconnect retries it
	_ = s.bridge.Adapter.Ready(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return multierr.Append(err, s.Close(context.Background()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Close(shutdownCtx)
}

// Close gracefully shuts down the server and tears the bridge down
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var err error
	if shutdownErr := s.http.Shutdown(ctx); shutdownErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to shut down http server: %w", shutdownErr))
	}
	s.bridge.Close()
	s.tracer.Close()

	// Sync reports EINVAL for stdout on linux; ignore it
	_ = s.logger.Sync()
	return err
}
