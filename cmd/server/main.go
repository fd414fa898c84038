package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"photo-gallery/internal/config"
	"photo-gallery/internal/observability"
	"photo-gallery/internal/platform/cache"
	"photo-gallery/internal/platform/database"
	"photo-gallery/internal/platform/server"
	"photo-gallery/internal/platform/storage"
	"photo-gallery/internal/services"
	"photo-gallery/internal/web/handlers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "photo-gallery: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obsCfg := observability.LoadConfig()
	obsCfg.Environment = cfg.Environment
	obsCfg.LogLevel = cfg.Logging.Level
	obsCfg.LogFormat = cfg.Logging.Format
	logger := observability.NewLogger(obsCfg)
	observability.InstallErrorHandler(logger)

	provider, err := observability.NewProvider(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx).Err(err).Msg("Failed to flush telemetry")
		}
	}()

	db, err := database.NewConnection(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := database.RunMigrations(ctx, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info(ctx).Strs("applied", applied).Msg("Database migrations complete")

	storageClient, err := storage.NewService(ctx, cfg.Storage)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	var redisClient *cache.RedisClient
	var keys handlers.KeyStore
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to connect to cache: %w", err)
		}
		keys = redisClient
	}

	container := services.NewContainer(cfg, db, storageClient, redisClient, logger)
	defer func() { _ = container.Close() }() //nolint:errcheck // Shutdown cleanup

	if cfg.Storage.ReconcileOnStart {
		imported, err := container.PhotoService().Reconcile(ctx)
		if err != nil {
			logger.Warn(ctx).Err(err).Msg("Storage reconcile failed")
		} else {
			logger.Info(ctx).Int("imported", imported).Msg("Storage reconcile complete")
		}
	}

	if count, err := container.PhotoRows().Count(ctx); err == nil {
		logger.Info(ctx).Int("photos", count).Msg("Gallery loaded")
	}

	metrics, err := observability.NewHTTPMetrics(provider.Meter("photo-gallery/http"))
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	csrf, err := handlers.NewCSRF(ctx, cfg.CSRF, keys, logger)
	if err != nil {
		return fmt.Errorf("failed to set up CSRF protection: %w", err)
	}
	handler := handlers.NewWithContainer(container, csrf, logger, metrics)
	srv := server.New(cfg, handler.Routes())

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx).
			Str("addr", srv.Addr).
			Bool("csrf", cfg.CSRF.Enabled).
			Bool("cache", cfg.Cache.Enabled).
			Bool("legacy_upload", cfg.LegacyUploadEnabled).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info(context.Background()).Msg("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info(shutdownCtx).Msg("Server exited")
	return nil
}
