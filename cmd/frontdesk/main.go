package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"frontdesk/db"
	"frontdesk/internal/api"
	"frontdesk/internal/api/handlers"
	"frontdesk/internal/matching"
	"frontdesk/internal/repository"
	"frontdesk/internal/repository/memory"
	"frontdesk/internal/service"
	"frontdesk/internal/sweeper"
	"frontdesk/pkg/auth"
	"frontdesk/pkg/config"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/postgres"

	"go.uber.org/zap"
)

// @title Frontdesk API
// @version 1.0
// @description Human-in-the-loop helpdesk: escalation lifecycle and a self-learning knowledge base.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting frontdesk service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store repository.Store
	switch cfg.Storage.Driver {
	case "memory":
		appLogger.Warn("Using in-memory storage, data will not survive restarts")
		store = memory.NewStore()
	default:
		if err := db.Migrate(&cfg.Database, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		store = repository.NewPostgresStore(pool, appLogger)
	}
	defer store.Close()

	// Initialize the in-memory relevance index and warm it from storage
	index, err := matching.NewRelevanceIndex()
	if err != nil {
		appLogger.Fatal("Failed to create relevance index", zap.Error(err))
	}
	defer index.Close()

	// Initialize services
	knowledgeService := service.NewKnowledgeService(store, index, &cfg.Search, appLogger)
	if err := knowledgeService.WarmIndex(ctx); err != nil {
		appLogger.Fatal("Failed to warm relevance index", zap.Error(err))
	}

	notifier := service.NewLogNotifier(appLogger)
	helpRequestService := service.NewHelpRequestService(store, knowledgeService, notifier, &cfg.Request, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecretKey, cfg.Auth.JWTExpiry)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtManager, &cfg.Auth, appLogger)
	helpRequestHandler := handlers.NewHelpRequestHandler(helpRequestService, appLogger)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, helpRequestHandler, knowledgeHandler, jwtManager, store, &cfg.Server, appLogger)

	// Background timeout sweeper
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.New(helpRequestService, cfg.Request.SweepInterval, appLogger).Run(ctx)
	}()

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
	<-sweepDone
}
