package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/app"
	"github.com/spacesedan/sentidash/internal/dashboard"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/models"
)

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, models.ModeSentiment, models.ModeEmotion)
	if err != nil {
		slog.Error("[Dashboard] Failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	srv := dashboard.New(a.Loader, a.Analyzer, a.Registry, dashboard.Options{
		DefaultSource:  cfg.DatasetPath,
		AllowedSources: cfg.DatasetSources,
		PreviewRows:    cfg.PreviewRows,
		CacheTTL:       cfg.CacheTTL,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("[Dashboard] Server stopped", slog.String("error", err.Error()))
			a.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("[Dashboard] Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Dashboard] Shutdown failed", slog.String("error", err.Error()))
		}
	}
}
