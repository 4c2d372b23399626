package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/service"
	"github.com/tidecast/tidecast/internal/service/publisher"
	"github.com/tidecast/tidecast/internal/service/publisher/facebook"
	"github.com/tidecast/tidecast/internal/service/publisher/instagram"
	"github.com/tidecast/tidecast/internal/service/publisher/linkedin"
	"github.com/tidecast/tidecast/internal/service/publisher/twitter"
	"github.com/tidecast/tidecast/internal/store"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Store  *store.Store
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Registry     *publisher.Registry
	Scheduler    *service.Scheduler
	Dispatcher   *service.Dispatcher
	Trends       *service.TrendService
	Generator    *service.GeneratorService
	Monitoring   *service.MonitoringService
	Auth         *service.AuthService
	StatsUpdater *service.StatsUpdater
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := store.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	st := store.New(db)

	// Register platform publishers. Adapters are credential-driven: an
	// unregistered account simply fails at dispatch with a clear message.
	registry := publisher.NewRegistry(logger)
	for _, p := range []publisher.Publisher{
		twitter.New(logger),
		facebook.New(logger),
		instagram.New(logger),
		linkedin.New(logger),
	} {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register publisher: %w", err)
		}
	}

	publishTimeout, err := time.ParseDuration(cfg.Scheduler.PublishTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid publish timeout: %w", err)
	}
	statsInterval, err := time.ParseDuration(cfg.Scheduler.StatsInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid stats interval: %w", err)
	}

	// Initialize services
	monitoring := service.NewMonitoringService(db, logger)
	dispatcher := service.NewDispatcher(st, registry, monitoring, logger, publishTimeout)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, st, dispatcher)
	trends := service.NewTrendService(&cfg.Trends, st, logger)
	generator := service.NewGeneratorService(&cfg.Generator, st, logger)
	auth := service.NewAuthService(&cfg.Auth, logger)

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:       cfg,
		DB:           db,
		Store:        st,
		Router:       router,
		Logger:       logger,
		Registry:     registry,
		Scheduler:    scheduler,
		Dispatcher:   dispatcher,
		Trends:       trends,
		Generator:    generator,
		Monitoring:   monitoring,
		Auth:         auth,
		StatsUpdater: service.NewStatsUpdater(monitoring, logger, statsInterval),
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Auth-Code")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	api.Use(s.Auth.Middleware())
	{
		// Scheduling pipeline
		api.GET("/schedule", s.handleListScheduled)
		api.POST("/schedule", s.handleEnqueue)
		api.POST("/publish", s.handlePublishNow)
		api.GET("/cron", s.handleRunDueCycle)

		// Accounts
		api.GET("/accounts", s.handleListAccounts)
		api.POST("/accounts", s.handleCreateAccount)

		// Trends
		api.GET("/trends", s.handleListTrends)
		api.POST("/trends", s.handleDiscoverTrends)
		api.GET("/trends/:id", s.handleGetTrend)

		// Content generation
		api.POST("/generate", s.handleGenerate)

		// Registered platforms
		api.GET("/platforms", s.handleListPlatforms)
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler and stats updater
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	s.StatsUpdater.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop background workers first
	s.Scheduler.Stop()
	s.StatsUpdater.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
