package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boredgamer/platform/brackets"
	"github.com/boredgamer/platform/config"
	"github.com/boredgamer/platform/db"
	"github.com/boredgamer/platform/handlers"
	"github.com/boredgamer/platform/middleware"
	"github.com/boredgamer/platform/repositories"
	api "github.com/boredgamer/platform/routes"
	"github.com/boredgamer/platform/services"
	"github.com/boredgamer/platform/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	// Retention archive target (Cloudflare R2); optional.
	var archiver storage.EventArchiver
	if cfg.ArchiveEnabled() {
		archiver, err = storage.NewCloudflareR2Archiver(storage.CloudflareR2ArchiverConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("retention archiver initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("retention archiving disabled (R2 credentials not configured)")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	studioRepo := repositories.NewPostgresStudioRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	logger.Info("repositories initialized")

	studioService := services.NewStudioService(studioRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, studioRepo)
	bracketService := services.NewBracketService(tournamentRepo, wsHub)
	eventService := services.NewEventService(eventRepo)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, studioRepo)
	retentionService := services.NewRetentionService(studioRepo, eventRepo, archiver, logger)
	logger.Info("services initialized")

	// Retention sweep scheduler: run once at startup, then on the ticker.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		logger.Info("retention sweep scheduler started", slog.Duration("interval", cfg.SweepInterval))

		if err := retentionService.Sweep(context.Background()); err != nil {
			logger.Error("scheduler: initial retention sweep failed", slog.Any("error", err))
		}

		for range ticker.C {
			logger.Info("scheduler: triggering retention sweep")
			if err := retentionService.Sweep(context.Background()); err != nil {
				logger.Error("scheduler: retention sweep failed", slog.Any("error", err))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(studioService, cfg.JWTSecretKey)
	studioHandler := handlers.NewStudioHandler(studioService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, bracketService)
	eventHandler := handlers.NewEventHandler(eventService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	mw := middleware.New(cfg.JWTSecretKey, studioService)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		mw,
		authHandler,
		studioHandler,
		tournamentHandler,
		eventHandler,
		leaderboardHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
