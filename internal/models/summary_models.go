package models

import "time"

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelValues are the raw confidences predicted for one label.
type LabelValues struct {
	Label  string
	Values []float64
}

// ConfidenceStats are the box-plot figures for one label.
type ConfidenceStats struct {
	Label  string  `json:"label"`
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

type DailyCount struct {
	Day   time.Time `json:"day"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

type Summary struct {
	Mode     Mode              `json:"mode"`
	Total    int               `json:"total"`
	Counts   []LabelCount      `json:"counts"`
	Stats    []ConfidenceStats `json:"stats"`
	Trend    []DailyCount      `json:"trend,omitempty"`
	Dominant string            `json:"dominant"`
}

type LabelMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvaluationReport holds accuracy plus support-weighted precision, recall and F1.
type EvaluationReport struct {
	Accuracy  float64        `json:"accuracy"`
	Precision float64        `json:"precision"`
	Recall    float64        `json:"recall"`
	F1        float64        `json:"f1"`
	PerLabel  []LabelMetrics `json:"per_label"`
}
