// Package app wires configuration into the loader and analyzer shared by the
// dashboard and the annotate CLI.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/analysis"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/dataset"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/predict"
)

type App struct {
	Config   config.Config
	Registry *prometheus.Registry
	Loader   *dataset.Loader
	Analyzer *analysis.Analyzer

	closers []func()
}

// Build sets up a predictor for each requested mode. A backend that cannot
// serve a mode is skipped with a warning; that mode then relies on labels
// carried by the data.
func Build(ctx context.Context, cfg config.Config, modes ...models.Mode) (*App, error) {
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}

	cache, closeCache, err := predict.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeCache)

	predictors := make(map[models.Mode]predict.Predictor, len(modes))
	for _, mode := range modes {
		p, err := predict.New(cfg, mode)
		if errors.Is(err, predict.ErrModeUnsupported) {
			slog.Warn("[App] Backend cannot label this mode, using dataset columns only",
				slog.String("backend", cfg.Backend),
				slog.String("mode", string(mode)))
			continue
		}
		if err != nil {
			a.Close()
			return nil, err
		}
		if c, ok := p.(interface{ Close() error }); ok {
			a.closers = append(a.closers, func() { _ = c.Close() })
		}
		predictors[mode] = predict.NewCached(p, cache)
	}

	a.Analyzer = analysis.New(predictors, analysis.Options{
		BatchSize:      cfg.BatchSize,
		StripMarkdown:  cfg.StripMarkdown,
		UsePrecomputed: cfg.UsePrecomputed,
	}, analysis.NewMetrics(a.Registry))

	httpClient := clients.NewDownloadClient(ctx, clients.OAuthOptions{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthSecret,
		TokenURL:     cfg.OAuthTokenURL,
	})

	var s3Getter dataset.ObjectGetter
	if awsCfg, err := clients.LoadAWSConfig(ctx, cfg.S3Region); err != nil {
		slog.Warn("[App] S3 sources disabled", slog.String("error", err.Error()))
	} else {
		s3Getter = clients.NewS3Client(awsCfg, cfg.S3Endpoint)
	}
	a.Loader = dataset.NewLoader(httpClient, s3Getter)

	return a, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
