package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	recordsProcessed    *prometheus.CounterVec
	confidenceHistogram *prometheus.HistogramVec
	predictDuration     *prometheus.HistogramVec
	predictErrors       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentidash_records_labelled_total",
				Help: "Total number of records labelled",
			},
			[]string{"mode", "label"},
		),
		confidenceHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentidash_confidence_distribution",
				Help:    "Distribution of prediction confidence by label",
				Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.98, 0.99, 1.0},
			},
			[]string{"mode", "label"},
		),
		predictDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentidash_predict_duration_seconds",
				Help:    "Time taken to label one batch",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"backend"},
		),
		predictErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentidash_predict_errors_total",
				Help: "Total number of failed predictor calls",
			},
			[]string{"backend"},
		),
	}

	reg.MustRegister(
		m.recordsProcessed,
		m.confidenceHistogram,
		m.predictDuration,
		m.predictErrors,
	)
	return m
}
