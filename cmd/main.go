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
	"github.com/lavelada/velada-votes/config"
	"github.com/lavelada/velada-votes/db"
	"github.com/lavelada/velada-votes/handlers"
	"github.com/lavelada/velada-votes/live"
	"github.com/lavelada/velada-votes/middleware"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/repositories"
	api "github.com/lavelada/velada-votes/routes"
	"github.com/lavelada/velada-votes/services"
	"github.com/lavelada/velada-votes/storage"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// The combat card is fixed per edition; refuse to start on bad data.
	reg := registry.LaVelada2025()
	if errs := reg.Validate(); len(errs) > 0 {
		for _, validationErr := range errs {
			logger.Error("invalid combat card", slog.Any("error", validationErr))
		}
		os.Exit(1)
	}
	logger.Info("combat card validated", slog.Int("combats", len(reg.Combats())))

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
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewR2Uploader(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, avatar uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	voteRepo := repositories.NewPostgresVoteRepository(dbConn)
	winnerRepo := repositories.NewPostgresWinnerRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)

	votingService := services.NewVotingService(reg, voteRepo, logger)
	winnerService := services.NewWinnerService(reg, winnerRepo, hub, logger)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader, logger)

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	authHandler := handlers.NewAuthHandler(authService, authenticator)
	voteHandler := handlers.NewVoteHandler(votingService)
	winnerHandler := handlers.NewWinnerHandler(winnerService)
	userHandler := handlers.NewUserHandler(userService)
	combatHandler := handlers.NewCombatHandler(reg)
	webSocketHandler := handlers.NewWebSocketHandler(hub, reg)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		voteHandler,
		winnerHandler,
		userHandler,
		combatHandler,
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
	}
	logger.Info("application exited")
}
