package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentidash/internal/aggregate"
	"github.com/spacesedan/sentidash/internal/charts"
	"github.com/spacesedan/sentidash/internal/dataset"
	"github.com/spacesedan/sentidash/internal/evaluation"
	"github.com/spacesedan/sentidash/internal/models"
)

type tile struct {
	Label   string
	Count   int
	Percent float64
	Color   string
}

type pageData struct {
	Sources []string
	Source  string
	Mode   models.Mode
	Query  string
	Error  string

	Summary    models.Summary
	Tiles      []tile
	Evaluation *models.EvaluationReport
	Preview    []models.Record
	Matches    int

	PieURL        template.URL
	BarURL        template.URL
	ConfidenceURL template.URL
	TrendURL      template.URL
}

type summaryResponse struct {
	Source     string                   `json:"source"`
	Summary    models.Summary           `json:"summary"`
	Evaluation *models.EvaluationReport `json:"evaluation,omitempty"`
}

func (s *Server) handleIndex(c echo.Context) error {
	mode := models.ParseMode(c.QueryParam("mode"))

	source, err := s.resolveSource(c.QueryParam("source"))
	if err != nil {
		return s.renderError(c, s.opts.DefaultSource, mode, err)
	}
	records, err := s.dataset(c.Request().Context(), source, mode)
	if err != nil {
		return s.renderError(c, source, mode, err)
	}
	return s.renderPage(c, source, mode, c.QueryParam("q"), records)
}

func (s *Server) handleUpload(c echo.Context) error {
	mode := models.ParseMode(c.FormValue("mode"))

	fh, err := c.FormFile("file")
	if err != nil {
		return s.renderError(c, "", mode, fmt.Errorf("%w: no file uploaded", dataset.ErrEmpty))
	}
	f, err := fh.Open()
	if err != nil {
		return s.renderError(c, fh.Filename, mode, err)
	}
	defer f.Close()

	if fh.Size > s.opts.MaxUploadSize {
		return s.renderError(c, "", mode, fmt.Errorf("%w: %s is %d bytes, the limit is %d", dataset.ErrTooLarge, fh.Filename, fh.Size, s.opts.MaxUploadSize))
	}
	content, err := dataset.ReadLimited(f, s.opts.MaxUploadSize)
	if err != nil {
		return s.renderError(c, fh.Filename, mode, err)
	}

	source, records, err := s.storeUpload(c.Request().Context(), fh.Filename, content, mode)
	if err != nil {
		return s.renderError(c, fh.Filename, mode, err)
	}

	slog.Info("[Dashboard] Processed upload",
		slog.String("file", fh.Filename),
		slog.Int("rows", len(records)))
	return s.renderPage(c, source, mode, "", records)
}

func (s *Server) renderPage(c echo.Context, source string, mode models.Mode, query string, records []models.Record) error {
	summary := aggregate.Summarize(records, mode)
	matches := aggregate.Search(records, query)

	data := pageData{
		Sources: s.sourcesWith(source),
		Source:  source,
		Mode:    mode,
		Query:   query,
		Summary: summary,
		Tiles:   tiles(summary),
		Preview: matches[:min(len(matches), s.opts.PreviewRows)],
		Matches: len(matches),
	}
	data.PieURL = chartURL("distribution", source, mode, url.Values{"kind": {string(charts.KindPie)}})
	data.BarURL = chartURL("distribution", source, mode, url.Values{"kind": {string(charts.KindBar)}})
	data.ConfidenceURL = chartURL("confidence", source, mode, nil)
	if len(summary.Trend) > 0 {
		data.TrendURL = chartURL("trend", source, mode, nil)
	}
	data.Evaluation = evaluationFor(records, mode)

	return c.Render(http.StatusOK, "index.html", data)
}

func (s *Server) renderError(c echo.Context, source string, mode models.Mode, err error) error {
	status := statusFor(err)
	slog.Error("[Dashboard] Failed to build dashboard",
		slog.String("source", source),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	return c.Render(status, "index.html", pageData{
		Sources: s.sources,
		Source:  source,
		Mode:    mode,
		Error:   errorMessage(err),
	})
}

// sourcesWith lists the configured sources plus the current upload, if any.
func (s *Server) sourcesWith(current string) []string {
	if !strings.HasPrefix(current, uploadPrefix) {
		return s.sources
	}
	return append(slices.Clone(s.sources), current)
}

// evaluationFor scores predictions against the label column. That column holds
// sentiment ground truth, so emotion runs are not scored.
func evaluationFor(records []models.Record, mode models.Mode) *models.EvaluationReport {
	if mode != models.ModeSentiment {
		return nil
	}
	report, err := evaluation.EvaluateRecords(records, mode)
	if err != nil {
		return nil
	}
	return &report
}

func errorMessage(err error) string {
	if errors.Is(err, dataset.ErrMissingTextColumn) {
		return "The dataset must contain a 'text' column."
	}
	return err.Error()
}

func tiles(summary models.Summary) []tile {
	out := make([]tile, 0, len(summary.Counts))
	for _, lc := range summary.Counts {
		pct := 0.0
		if summary.Total > 0 {
			pct = 100 * float64(lc.Count) / float64(summary.Total)
		}
		out = append(out, tile{Label: lc.Label, Count: lc.Count, Percent: pct, Color: charts.ColorFor(lc.Label)})
	}
	return out
}

func chartURL(name, source string, mode models.Mode, extra url.Values) template.URL {
	q := url.Values{"source": {source}, "mode": {string(mode)}}
	for k, v := range extra {
		q[k] = v
	}
	return template.URL("/charts/" + name + ".svg?" + q.Encode())
}

func (s *Server) handleSummary(c echo.Context) error {
	mode := models.ParseMode(c.QueryParam("mode"))

	source, err := s.resolveSource(c.QueryParam("source"))
	if err != nil {
		return echo.NewHTTPError(statusFor(err), errorMessage(err))
	}
	records, err := s.dataset(c.Request().Context(), source, mode)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), errorMessage(err))
	}

	return c.JSON(http.StatusOK, summaryResponse{
		Source:     source,
		Summary:    aggregate.Summarize(records, mode),
		Evaluation: evaluationFor(records, mode),
	})
}

func (s *Server) handleDistributionChart(c echo.Context) error {
	return s.svg(c, func(w io.Writer, records []models.Record, mode models.Mode) error {
		title := "Sentiment Distribution"
		if mode == models.ModeEmotion {
			title = "Emotion Distribution"
		}
		return charts.Distribution(w, aggregate.CountLabels(records, mode), charts.ParseKind(c.QueryParam("kind")), title)
	})
}

func (s *Server) handleConfidenceChart(c echo.Context) error {
	return s.svg(c, func(w io.Writer, records []models.Record, mode models.Mode) error {
		return charts.BoxPlot(w, aggregate.ConfidenceValues(records, mode))
	})
}

func (s *Server) handleTrendChart(c echo.Context) error {
	return s.svg(c, func(w io.Writer, records []models.Record, mode models.Mode) error {
		return charts.Trend(w, aggregate.DailyTrend(records, mode))
	})
}

type drawFunc func(w io.Writer, records []models.Record, mode models.Mode) error

func (s *Server) svg(c echo.Context, draw drawFunc) error {
	mode := models.ParseMode(c.QueryParam("mode"))
	source, err := s.resolveSource(c.QueryParam("source"))
	if err != nil {
		return echo.NewHTTPError(statusFor(err), errorMessage(err))
	}
	records, err := s.dataset(c.Request().Context(), source, mode)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), errorMessage(err))
	}

	var buf bytes.Buffer
	if err := draw(&buf, records, mode); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
