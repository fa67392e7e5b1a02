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

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/broadcast"
	"github.com/Dosada05/championship-draw/config"
	"github.com/Dosada05/championship-draw/db"
	"github.com/Dosada05/championship-draw/draw"
	"github.com/Dosada05/championship-draw/handlers"
	"github.com/Dosada05/championship-draw/metrics"
	"github.com/Dosada05/championship-draw/models"
	"github.com/Dosada05/championship-draw/repositories"
	api "github.com/Dosada05/championship-draw/routes"
	"github.com/Dosada05/championship-draw/services"
	"github.com/Dosada05/championship-draw/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("snapshot_backend", string(cfg.SnapshotBackend)),
		slog.String("bulk_bye_policy", string(cfg.BulkByePolicy)))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.MigratePostgres(dbConn); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := broadcast.NewHub(logger.With(slog.String("component", "hub")), recorder)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket hub started")

	teamRepo := repositories.NewTeamRepository(dbConn)
	matchRepo := repositories.NewMatchRepository(dbConn)

	var (
		snapshots draw.SnapshotStore
		publisher services.BracketPublisher
	)
	switch cfg.SnapshotBackend {
	case config.SnapshotDB:
		snapshots = repositories.NewDrawStateRepository(dbConn)
	case config.SnapshotR2:
		objects, err := storage.NewCloudflareR2Store(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 store: %w", err)
		}
		r2 := storage.NewSnapshotStore(objects, "")
		snapshots, publisher = r2, r2
		logger.Info("Cloudflare R2 snapshot store initialized", slog.String("bucket", cfg.R2.BucketName))
	}

	drawService := services.NewDrawService(services.DrawServiceConfig{
		Teams:     teamRepo,
		Matches:   matchRepo,
		Snapshots: snapshots,
		Publisher: publisher,
		Channels: func(tournamentID string) draw.Channel {
			return broadcast.NewRoomChannel(wsHub, tournamentID)
		},
		Timing:   cfg.DrawTiming,
		Observer: recorder,
		Logger:   logger.With(slog.String("component", "draw")),
	})
	matchService := services.NewMatchService(
		teamRepo,
		matchRepo,
		brackets.NewSingleEliminationGenerator(),
		cfg.BulkByePolicy,
		drawService,
		nil,
		logger.With(slog.String("component", "matches")),
	)
	authService := services.NewAuthService(models.Admin{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		Role:         models.RoleAdmin,
	}, cfg.JWTSecretKey)
	teamService := services.NewTeamService(teamRepo, logger.With(slog.String("component", "teams")))
	qrService := services.NewQRService(cfg.PublicBaseURL, nil)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Deps{
		Logger:           logger,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		Tokens:           authService,
		Recorder:         recorder,
		Metrics:          recorder.Handler(),
		AuthHandler:      handlers.NewAuthHandler(authService),
		DrawHandler:      handlers.NewDrawHandler(drawService, qrService),
		MatchHandler:     handlers.NewMatchHandler(matchService),
		TeamHandler:      handlers.NewTeamHandler(teamService),
		WebSocketHandler: handlers.NewWebSocketHandler(wsHub, drawService, cfg.CORSAllowedOrigins),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// viewers get draw_end before the hub drops their connections
	drawService.Shutdown(shutdownCtx)
	stopHub()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
