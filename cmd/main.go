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

	"github.com/go-chi/chi/v5"

	"github.com/deekshith06/lc-rating-system/cache"
	"github.com/deekshith06/lc-rating-system/config"
	"github.com/deekshith06/lc-rating-system/db"
	"github.com/deekshith06/lc-rating-system/handlers"
	"github.com/deekshith06/lc-rating-system/leetcode"
	"github.com/deekshith06/lc-rating-system/live"
	"github.com/deekshith06/lc-rating-system/middleware"
	"github.com/deekshith06/lc-rating-system/rating"
	"github.com/deekshith06/lc-rating-system/repositories"
	api "github.com/deekshith06/lc-rating-system/routes"
	"github.com/deekshith06/lc-rating-system/services"
	"github.com/deekshith06/lc-rating-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Реестр каналов опционален: без DATABASE_URL работаем только с
	// явными списками пользователей.
	var channelRepo repositories.ChannelRepository
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			}
		}()
		channelRepo = repositories.NewPostgresChannelRepository(dbConn)
		logger.Info("database connection established, channel registry enabled")
	} else {
		logger.Warn("DATABASE_URL not set, channel registry disabled")
	}

	// Архивация отчётов тоже опциональна.
	var uploader storage.FileUploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, report archiving disabled")
	}

	appCache := cache.New(map[cache.Namespace]int{
		cache.NamespaceUser:    cfg.UserCacheCapacity,
		cache.NamespaceChannel: cfg.ChannelCacheCapacity,
	})

	lcClient := leetcode.NewClient(leetcode.Config{
		StandingsBaseURL: cfg.StandingsBaseURL,
		GraphQLURL:       cfg.GraphQLURL,
		Timeout:          cfg.UpstreamTimeout,
	})

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	channelService := services.NewChannelService(channelRepo, appCache)
	predictionService := services.NewPredictionService(
		lcClient,
		lcClient,
		lcClient,
		rating.NewPredictor(),
		appCache,
		hub,
		logger,
	)
	authService := services.NewAuthService(cfg.AdminPasswordHash, []byte(cfg.JWTSecretKey))
	archiveService := services.NewArchiveService(uploader, logger)
	logger.Info("services initialized")

	authenticator := middleware.NewAuthenticator([]byte(cfg.JWTSecretKey))

	predictionHandler := handlers.NewPredictionHandler(predictionService, channelService, archiveService)
	cacheHandler := handlers.NewCacheHandler(predictionService)
	channelHandler := handlers.NewChannelHandler(channelService)
	authHandler := handlers.NewAuthHandler(authService)
	liveHandler := handlers.NewLiveHandler(hub, logger)
	healthHandler := handlers.NewHealthHandler()

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.AllowedOrigins,
		authenticator,
		predictionHandler,
		cacheHandler,
		channelHandler,
		authHandler,
		liveHandler,
		healthHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
