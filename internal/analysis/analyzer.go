// Package analysis runs the clean → predict pipeline over a dataset.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/predict"
	"github.com/spacesedan/sentidash/internal/textclean"
	"github.com/spacesedan/sentidash/internal/utils"
)

var ErrNoPredictor = errors.New("no predictor configured for mode")

type Options struct {
	BatchSize int
	// StripMarkdown renders markdown to text before normalizing.
	StripMarkdown bool
	// UsePrecomputed keeps labels that arrived with the data instead of
	// calling the predictor for those rows.
	UsePrecomputed bool
}

type Analyzer struct {
	predictors map[models.Mode]predict.Predictor
	opts       Options
	metrics    *Metrics
}

// New builds an analyzer. predictors may omit a mode; running that mode then
// only works on rows that carry precomputed labels.
func New(predictors map[models.Mode]predict.Predictor, opts Options, metrics *Metrics) *Analyzer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = utils.BATCH_SIZE
	}
	return &Analyzer{predictors: predictors, opts: opts, metrics: metrics}
}

// Clean fills CleanText on every record.
func (a *Analyzer) Clean(records []models.Record) {
	for i := range records {
		text := records[i].Text
		if a.opts.StripMarkdown {
			text = textclean.StripMarkdown(text)
		}
		records[i].CleanText = textclean.Normalize(text)
	}
}

// Run cleans every record and labels it for mode in place.
func (a *Analyzer) Run(ctx context.Context, records []models.Record, mode models.Mode) error {
	start := time.Now()
	a.Clean(records)

	pending := make([]int, 0, len(records))
	for i := range records {
		if a.opts.UsePrecomputed {
			if label := records[i].Precomputed(mode); label != "" {
				records[i].SetLabel(mode, label)
				records[i].Confidence = 1
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		p, ok := a.predictors[mode]
		if !ok || p == nil {
			return fmt.Errorf("%w: %s", ErrNoPredictor, mode)
		}
		if err := a.predict(ctx, p, records, pending, mode); err != nil {
			return err
		}
	}

	a.observe(records, mode)
	slog.Info("[Analyzer] Labelled dataset",
		slog.String("mode", string(mode)),
		slog.Int("rows", len(records)),
		slog.Int("predicted", len(pending)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (a *Analyzer) predict(ctx context.Context, p predict.Predictor, records []models.Record, pending []int, mode models.Mode) error {
	for _, batch := range utils.Chunk(pending, a.opts.BatchSize) {
		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = records[idx].CleanText
		}

		start := time.Now()
		preds, err := p.Predict(ctx, texts)
		if a.metrics != nil {
			a.metrics.predictDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		}
		if err == nil && len(preds) != len(texts) {
			err = fmt.Errorf("%w (%d of %d)", predict.ErrShortResponse, len(preds), len(texts))
		}
		if err != nil {
			if a.metrics != nil {
				a.metrics.predictErrors.WithLabelValues(p.Name()).Inc()
			}
			slog.Error("[Analyzer] Prediction failed",
				slog.String("backend", p.Name()),
				slog.Int("first_row", records[batch[0]].Row),
				slog.String("error", err.Error()))
			return fmt.Errorf("predict rows %d-%d: %w", records[batch[0]].Row, records[batch[len(batch)-1]].Row, err)
		}

		for j, idx := range batch {
			records[idx].SetLabel(mode, preds[j].Label)
			records[idx].Confidence = preds[j].Confidence
		}
	}
	return nil
}

func (a *Analyzer) observe(records []models.Record, mode models.Mode) {
	if a.metrics == nil {
		return
	}
	for _, r := range records {
		label := r.LabelFor(mode)
		a.metrics.recordsProcessed.WithLabelValues(string(mode), label).Inc()
		a.metrics.confidenceHistogram.WithLabelValues(string(mode), label).Observe(r.Confidence)
	}
}
