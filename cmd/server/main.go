package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "siterisk/internal/adapters/http"
	pg "siterisk/internal/adapters/postgres"
	"siterisk/internal/config"
	"siterisk/internal/content"
	"siterisk/internal/engine"
	"siterisk/internal/logger"
	"siterisk/internal/ports"
	"siterisk/internal/services/assessment"
	"siterisk/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		return err
	}
	logger.Setup(cfg, os.Stdout)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown", "error", err)
		}
	}()

	catalogue, err := content.Default()
	if err != nil {
		return err
	}

	// The spatial database is optional; without it only feature payloads are
	// assessed and /assessments/site answers 503.
	var source ports.FeatureSource
	if cfg.DB.Enabled() {
		db, err := pg.Connect(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		source = pg.NewSpatialSource(db, catalogue, cfg.Spatial.Concurrency)
		slog.Info("spatial database connected", "spatial_concurrency", cfg.Spatial.Concurrency)
	} else {
		slog.Warn("DATABASE_URL not set, site assessments disabled")
	}

	svc := assessment.New(engine.New(catalogue), source)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpadapter.New(svc, catalogue).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("listening", "addr", cfg.ListenAddr, "catalogue_version", catalogue.Version, "engine", engine.Version)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
