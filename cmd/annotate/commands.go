package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/aggregate"
	"github.com/spacesedan/sentidash/internal/app"
	"github.com/spacesedan/sentidash/internal/dataset"
	"github.com/spacesedan/sentidash/internal/evaluation"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/sink"
	"github.com/spf13/cobra"
)

type labelFlags struct {
	in      string
	out     string
	sink    string
	backend string
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "annotate",
		Short:        "Clean and label text datasets offline",
		SilenceUsage: true,
	}

	root.AddCommand(
		newCleanCmd(cfg),
		newLabelCmd(cfg, models.ModeSentiment, "analyze", "Label each row positive, negative or neutral"),
		newLabelCmd(cfg, models.ModeEmotion, "emotion", "Label each row with an emotion"),
		newEvaluateCmd(),
	)
	return root
}

func addIOFlags(cmd *cobra.Command, f *labelFlags) {
	cmd.Flags().StringVar(&f.in, "in", "", "input dataset: path, https:// or s3:// URL")
	cmd.Flags().StringVar(&f.out, "out", "-", "output CSV path for the csv sink, - for stdout")
	_ = cmd.MarkFlagRequired("in")
}

func newCleanCmd(cfg config.Config) *cobra.Command {
	f := &labelFlags{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Add a clean_text column to a dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Loader.Load(ctx, f.in)
			if err != nil {
				return err
			}
			a.Analyzer.Clean(records)
			return writeSink(ctx, cfg, sink.Options{Kind: sink.KindCSV, Out: f.out, Stdout: cmd.OutOrStdout(), Source: f.in, Mode: models.ModeSentiment}, records)
		},
	}
	addIOFlags(cmd, f)
	return cmd
}

func newLabelCmd(cfg config.Config, mode models.Mode, use, short string) *cobra.Command {
	f := &labelFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if f.backend != "" {
				cfg.Backend = strings.ToLower(f.backend)
			}

			a, err := app.Build(ctx, cfg, mode)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Loader.Load(ctx, f.in)
			if err != nil {
				return err
			}
			if err := a.Analyzer.Run(ctx, records, mode); err != nil {
				return err
			}

			for _, lc := range aggregate.CountLabels(records, mode) {
				slog.Info("[Annotate] label count", slog.String("label", lc.Label), slog.Int("count", lc.Count))
			}
			return writeSink(ctx, cfg, sink.Options{Kind: f.sink, Out: f.out, Stdout: cmd.OutOrStdout(), Source: f.in, Mode: mode}, records)
		},
	}
	addIOFlags(cmd, f)
	cmd.Flags().StringVar(&f.sink, "sink", sink.KindCSV, "where to write results: csv, dynamodb, postgres or kafka")
	cmd.Flags().StringVar(&f.backend, "backend", "", "predictor backend: vader, transformer, remote or openai")
	return cmd
}

func writeSink(ctx context.Context, cfg config.Config, opts sink.Options, records []models.Record) error {
	s, closeSink, err := sink.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer closeSink()
	return s.Write(ctx, records)
}

func newEvaluateCmd() *cobra.Command {
	var in, truth, pred string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a labelled dataset against its ground truth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := dataset.NewLoader(nil, nil).Load(cmd.Context(), in)
			if err != nil {
				return err
			}
			yTrue, yPred, err := columns(records, truth, pred)
			if err != nil {
				return err
			}
			report, err := evaluation.Evaluate(yTrue, yPred)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "labelled dataset")
	cmd.Flags().StringVar(&truth, "truth", dataset.ColumnLabel, "ground-truth column")
	cmd.Flags().StringVar(&pred, "pred", "sentiment", "predicted column")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// columns pulls the truth and prediction columns out of records, looking at
// the typed fields first and the extra columns after.
func columns(records []models.Record, truth, pred string) ([]string, []string, error) {
	truth, pred = dataset.NormalizeColumnName(truth), dataset.NormalizeColumnName(pred)
	yTrue := make([]string, 0, len(records))
	yPred := make([]string, 0, len(records))
	for _, r := range records {
		t, ok := field(r, truth)
		if !ok {
			return nil, nil, fmt.Errorf("column %q not found", truth)
		}
		p, ok := field(r, pred)
		if !ok {
			return nil, nil, fmt.Errorf("column %q not found", pred)
		}
		yTrue = append(yTrue, t)
		yPred = append(yPred, p)
	}
	return yTrue, yPred, nil
}

func field(r models.Record, name string) (string, bool) {
	switch name {
	case dataset.ColumnLabel:
		return r.Label, true
	case dataset.ColumnPredictedSentiment:
		return r.PredictedSentiment, true
	case dataset.ColumnEmotion:
		return r.Emotion, true
	}
	v, ok := r.Extra[name]
	return v, ok
}

func printReport(w io.Writer, report models.EvaluationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
