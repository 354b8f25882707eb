package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"guarantee-desk/internal/api"
	"guarantee-desk/internal/api/handlers"
	"guarantee-desk/internal/config"
	"guarantee-desk/internal/db"
	"guarantee-desk/internal/health"
	"guarantee-desk/internal/logger"
	"guarantee-desk/internal/repository"
	"guarantee-desk/internal/scoring"
	"guarantee-desk/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load and validate configuration first (before logger)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger with configuration
	logger.Init(cfg.Logger)

	logger.Info().
		Str("environment", cfg.Logger.Environment).
		Str("log_level", cfg.Logger.Level).
		Msg("configuration loaded successfully")

	// Run migrations before connecting to database
	logger.Info().Msg("running database migrations")
	if err := db.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize database
	ctx := context.Background()
	database, err := db.NewDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("database connected successfully")

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(database.Pool)
	learningRepo := repository.NewLearningRepository(database.Pool)
	settingsRepo := repository.NewSettingsRepository(database.Pool)

	// Initialize services
	startupThresholds := scoring.Thresholds{
		AutoAccept:    cfg.Matching.AutoAccept,
		Review:        cfg.Matching.Review,
		WeakFloor:     cfg.Matching.WeakFloor,
		ConflictDelta: cfg.Matching.ConflictDelta,
		MaxCandidates: cfg.Matching.MaxCandidates,
	}
	settingsService := service.NewSettingsService(settingsRepo, startupThresholds)
	candidateService := service.NewCandidateService(catalogRepo, learningRepo, settingsService)
	matchService := service.NewMatchService(candidateService, settingsService)
	feedbackService := service.NewFeedbackService(learningRepo)
	catalogService := service.NewCatalogService(catalogRepo)

	// Initialize handlers
	matchingHandler := handlers.NewMatchingHandler(candidateService, matchService, feedbackService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, feedbackService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware(cfg.CORS))
	router.Use(api.ErrorHandlerMiddleware())

	// Health check endpoints
	router.GET("/health/live", health.LiveHandler)
	router.GET("/health/ready", health.ReadyHandler(database, cfg.Database.HealthTimeout))

	// API routes
	v1 := router.Group("/api/v1")
	{
		matching := v1.Group("/matching")
		{
			matching.GET("/candidates", matchingHandler.GetCandidates)
			matching.POST("/candidates/batch", matchingHandler.GetBatchCandidates)
			matching.GET("/decision", matchingHandler.GetMatchDecision)
			matching.POST("/decisions", matchingHandler.SubmitDecision)
		}

		catalog := v1.Group("/catalog/:domain")
		{
			catalog.GET("/entities", catalogHandler.ListEntities)
			catalog.POST("/entities", catalogHandler.CreateEntity)
			catalog.POST("/entities/:id/aliases", catalogHandler.CreateAlias)
			catalog.GET("/entities/:id/learned", catalogHandler.ListLearnedAliases)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("/matching", settingsHandler.GetSettings)
			settings.PUT("/matching", settingsHandler.UpdateSettings)
		}
	}

	// Start server with configured bind address
	addr := cfg.GetBindAddress()
	// Use a listener so we can discover the selected port when PORT=0
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", addr).Msg("failed to bind listener")
	}

	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		_ = ln.Close()
		logger.Fatal().Msg("failed to determine TCP address")
	}
	selectedPort := tcpAddr.Port

	srv := &http.Server{
		Addr:    ln.Addr().String(),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		logger.Info().
			Int("port", selectedPort).
			Str("addr", cfg.Server.Host).
			Msg("starting server")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	// Give outstanding requests a configured timeout to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
