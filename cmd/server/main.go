package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emotional-diary/internal/auth"
	"emotional-diary/internal/config"
	"emotional-diary/internal/handlers"
	"emotional-diary/internal/repository"
	"emotional-diary/internal/services"
	"emotional-diary/migrations"
	"emotional-diary/pkg/database"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("diary-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting emotional diary API server", logging.Fields{
		"version":       version,
		"server_host":   cfg.Server.Host,
		"server_port":   cfg.Server.Port,
		"db_driver":     cfg.Database.Driver,
		"exclude_dates": cfg.Stats.ExcludeUnparseableDates,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("emotional_diary")

	// Initialize database
	db, err := database.Open(cfg.Database.Connection(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db, migrations.Up); err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to apply migrations", logging.Fields{}, err)
		}
		logger.Info(ctx, "[STARTUP_MIGRATE] Schema is up to date", logging.Fields{})
	}

	// Initialize repository
	diaryRepo := repository.NewDiaryRepository(db, logger, metricsCollector)

	// Initialize services
	entryService := services.NewEntryService(diaryRepo, services.NewLogNotifier(logger), logger, metricsCollector)
	statsService := services.NewStatisticsService(diaryRepo, logger, metricsCollector, services.StatisticsOptions{
		ExcludeUnparseableDates: cfg.Stats.ExcludeUnparseableDates,
	})
	userService := services.NewUserService(diaryRepo, logger)

	// Initialize handlers
	diaryHandler := handlers.NewDiaryHandler(
		entryService,
		statsService,
		userService,
		diaryRepo,
		auth.NewHeaderAuthenticator(),
		logger,
		metricsCollector,
	)

	// Setup router
	router := mux.NewRouter()

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Register routes
	diaryHandler.RegisterRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
