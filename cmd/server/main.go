package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/nekogravitycat/venue-booking-backend/internal/app"
	"github.com/nekogravitycat/venue-booking-backend/internal/catalog"
	"github.com/nekogravitycat/venue-booking-backend/internal/config"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seeds, err := catalog.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	if err := seeds.Validate(); err != nil {
		return err
	}

	st, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, err := storage.NewLocalStorage(filepath.Join(cfg.DataDir, "files"))
	if err != nil {
		return err
	}

	container := app.NewContainer(app.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Store:          st,
		Blobs:          blobs,
		Catalog:        seeds,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTAccessTokenTTL,
		BcryptCost:     cfg.BcryptCost,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Location:       cfg.Location,
		Logger:         logger,
	})

	if cfg.SeedOwnerPassword != "" {
		if err := container.ProvisionSeedOwners(ctx, seeds.Owners, cfg.SeedOwnerPassword); err != nil {
			logger.Warn("failed to provision seed owners", "error", err)
		}
	} else if len(seeds.Owners) > 0 {
		logger.Warn("SEED_OWNER_PASSWORD not set; seed venue owners cannot sign in unless their accounts exist")
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "venues", len(seeds.Venues))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}

	logger.Info("server exited gracefully")
	return nil
}
