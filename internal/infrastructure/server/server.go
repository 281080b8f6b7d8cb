package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/rendergate/rendergate/internal/api/http"
	"github.com/rendergate/rendergate/internal/api/middleware"
	"github.com/rendergate/rendergate/internal/browser"
	"github.com/rendergate/rendergate/internal/infrastructure/config"
	"github.com/rendergate/rendergate/internal/infrastructure/logging"
	"github.com/rendergate/rendergate/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	client  *browser.Client
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else if l, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		OutputPaths: []string{"stdout"},
	}); err == nil {
		logger = l
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing rendergate server",
		zap.String("port", cfg.Server.Port),
		zap.String("browser_endpoint", cfg.Browser.Endpoint),
		zap.Bool("launch_local", cfg.Browser.LaunchLocal),
	)

	// Initialize metrics
	metrics := monitoring.NewMetrics()

	// Initialize browser session client
	profile := browser.Profile{
		WindowWidth:     cfg.Browser.WindowWidth,
		WindowHeight:    cfg.Browser.WindowHeight,
		UserAgent:       cfg.Browser.UserAgent,
		Headless:        cfg.Browser.Headless,
		NoSandbox:       cfg.Browser.NoSandbox,
		BlockAssets:     cfg.Browser.BlockAssets,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		ReadyTimeout:    cfg.Browser.ReadyTimeout,
	}
	client := browser.NewClient(cfg.Browser.Endpoint, cfg.Browser.LaunchLocal, profile, logger).
		WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := api.NewHandlers(client, cfg, logger, metrics)

	// Probe the backend version, observational only; the service starts
	// regardless of backend reachability.
	if !cfg.Browser.LaunchLocal {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if v, err := browser.ProbeVersion(ctx, cfg.Browser.Endpoint); err != nil {
			logger.Warn("Remote browser backend not reachable at startup",
				zap.String("endpoint", cfg.Browser.Endpoint),
				zap.Error(err),
			)
		} else {
			logger.Info("Remote browser backend reachable",
				zap.String("browser", v.Browser),
				zap.String("protocol", v.ProtocolVersion),
			)
			handlers.WithBackendVersion(v)
		}
	}

	// Register routes
	router.GET("/", handlers.Fetch)
	router.GET("/health", handlers.Health)
	router.GET("/info", handlers.Info)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		client:  client,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	// Sessions are per-request; there is no long-lived browser
	// connection to tear down here.
	s.logger.Sync()

	return nil
}
