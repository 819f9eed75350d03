// Package dashboard serves the sentiment dashboard over HTTP.
package dashboard

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacesedan/sentidash/internal/dataset"
	"github.com/spacesedan/sentidash/internal/models"
)

const uploadPrefix = "upload:"

var (
	errUnknownUpload    = errors.New("uploaded dataset has expired, upload it again")
	errSourceNotAllowed = errors.New("dataset source is not allowed")
)

type DatasetLoader interface {
	Load(ctx context.Context, source string) ([]models.Record, error)
	LoadReader(name string, r io.Reader) ([]models.Record, error)
}

type Labeller interface {
	Run(ctx context.Context, records []models.Record, mode models.Mode) error
}

type Options struct {
	DefaultSource string
	// AllowedSources may be requested with ?source= besides DefaultSource.
	AllowedSources []string
	PreviewRows    int
	CacheTTL       time.Duration
	MaxUploadSize  int64
}

type Server struct {
	echo     *echo.Echo
	loader   DatasetLoader
	analyzer Labeller
	opts     Options
	sources  []string

	// processed datasets keyed by source|mode
	datasets *cache.Cache
	loadMu   sync.Mutex

	requests *prometheus.CounterVec
}

func New(loader DatasetLoader, analyzer Labeller, reg *prometheus.Registry, opts Options) *Server {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 50
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = dataset.MaxSize
	}

	s := &Server{
		echo:     echo.New(),
		loader:   loader,
		analyzer: analyzer,
		opts:     opts,
		sources:  knownSources(opts),
		datasets: cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentidash_http_requests_total",
				Help: "Dashboard HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
	reg.MustRegister(s.requests)

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Renderer = newRenderer()

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.requests.WithLabelValues(c.Path(), fmt.Sprint(v.Status)).Inc()
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.Debug("[Dashboard] request", attrs...)
			return nil
		},
	}))

	s.echo.GET("/", s.handleIndex)
	s.echo.POST("/upload", s.handleUpload)
	s.echo.GET("/charts/distribution.svg", s.handleDistributionChart)
	s.echo.GET("/charts/confidence.svg", s.handleConfidenceChart)
	s.echo.GET("/charts/trend.svg", s.handleTrendChart)
	s.echo.GET("/api/summary", s.handleSummary)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error {
	slog.Info("[Dashboard] Listening", slog.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func knownSources(opts Options) []string {
	seen := map[string]bool{}
	var out []string
	for _, src := range append([]string{opts.DefaultSource}, opts.AllowedSources...) {
		if src != "" && !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

// resolveSource maps a requested source to one the server is willing to load:
// the configured sources or an upload it already holds.
func (s *Server) resolveSource(requested string) (string, error) {
	if requested == "" {
		return s.opts.DefaultSource, nil
	}
	if strings.HasPrefix(requested, uploadPrefix) {
		return requested, nil
	}
	for _, src := range s.sources {
		if src == requested {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errSourceNotAllowed, requested)
}

func cacheKey(source string, mode models.Mode) string {
	return source + "|" + string(mode)
}

// dataset returns the labelled records for source, loading and labelling them
// on first use. Callers must not modify the returned slice.
func (s *Server) dataset(ctx context.Context, source string, mode models.Mode) ([]models.Record, error) {
	key := cacheKey(source, mode)
	if v, ok := s.datasets.Get(key); ok {
		return v.([]models.Record), nil
	}
	if strings.HasPrefix(source, uploadPrefix) {
		return nil, errUnknownUpload
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if v, ok := s.datasets.Get(key); ok {
		return v.([]models.Record), nil
	}

	records, err := s.loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := s.analyzer.Run(ctx, records, mode); err != nil {
		return nil, err
	}

	s.datasets.SetDefault(key, records)
	return records, nil
}

// storeUpload labels an uploaded file and caches it under a content-derived
// source name so chart requests can find it.
func (s *Server) storeUpload(ctx context.Context, name string, content []byte, mode models.Mode) (string, []models.Record, error) {
	sum := sha256.Sum256(content)
	source := uploadPrefix + hex.EncodeToString(sum[:6]) + "/" + name

	if v, ok := s.datasets.Get(cacheKey(source, mode)); ok {
		return source, v.([]models.Record), nil
	}

	records, err := s.loader.LoadReader(name, bytes.NewReader(content))
	if err != nil {
		return "", nil, err
	}
	if err := s.analyzer.Run(ctx, records, mode); err != nil {
		return "", nil, err
	}

	s.datasets.SetDefault(cacheKey(source, mode), records)
	return source, records, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrMissingTextColumn),
		errors.Is(err, dataset.ErrUnsupportedFormat),
		errors.Is(err, dataset.ErrEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, dataset.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errSourceNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, errUnknownUpload):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
