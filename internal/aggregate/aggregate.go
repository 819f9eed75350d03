// Package aggregate tabulates labelled records for KPI tiles and charts.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/spacesedan/sentidash/internal/models"
	"gonum.org/v1/gonum/stat"
)

// UnknownLabel is counted for records that carry no label.
const UnknownLabel = "unknown"

// CountLabels tallies records per label. Counts always sum to len(records).
// The result is ordered by count descending, then label.
func CountLabels(records []models.Record, mode models.Mode) []models.LabelCount {
	tally := make(map[string]int)
	for _, r := range records {
		tally[labelOf(r, mode)]++
	}

	counts := make([]models.LabelCount, 0, len(tally))
	for label, n := range tally {
		counts = append(counts, models.LabelCount{Label: label, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

// CountMap is CountLabels keyed by label.
func CountMap(records []models.Record, mode models.Mode) map[string]int {
	m := make(map[string]int)
	for _, c := range CountLabels(records, mode) {
		m[c.Label] = c.Count
	}
	return m
}

// ConfidenceByLabel computes box-plot figures of confidence per label, ordered
// by label.
func ConfidenceByLabel(records []models.Record, mode models.Mode) []models.ConfidenceStats {
	groups := ConfidenceValues(records, mode)
	out := make([]models.ConfidenceStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, describe(g.Label, g.Values))
	}
	return out
}

// ConfidenceValues groups confidences by label, ordered by label. Every group
// holds at least one value.
func ConfidenceValues(records []models.Record, mode models.Mode) []models.LabelValues {
	groups := make(map[string][]float64)
	for _, r := range records {
		label := labelOf(r, mode)
		groups[label] = append(groups[label], r.Confidence)
	}

	out := make([]models.LabelValues, 0, len(groups))
	for label, values := range groups {
		out = append(out, models.LabelValues{Label: label, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func describe(label string, xs []float64) models.ConfidenceStats {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	return models.ConfidenceStats{
		Label:  label,
		N:      len(sorted),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
	}
}

// DailyTrend counts labels per calendar day. Records without a date are
// skipped. Ordered by day, then label.
func DailyTrend(records []models.Record, mode models.Mode) []models.DailyCount {
	type key struct {
		day   time.Time
		label string
	}
	tally := make(map[key]int)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		y, m, d := r.Date.Date()
		tally[key{time.Date(y, m, d, 0, 0, 0, 0, time.UTC), labelOf(r, mode)}]++
	}

	out := make([]models.DailyCount, 0, len(tally))
	for k, n := range tally {
		out = append(out, models.DailyCount{Day: k.day, Label: k.label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Search keeps records whose raw or clean text contains query, ignoring case.
// An empty query keeps everything.
func Search(records []models.Record, query string) []models.Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}

	var out []models.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Text), query) || strings.Contains(r.CleanText, query) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize gathers everything the dashboard's KPI tiles and charts need.
func Summarize(records []models.Record, mode models.Mode) models.Summary {
	counts := CountLabels(records, mode)

	s := models.Summary{
		Mode:   mode,
		Total:  len(records),
		Counts: counts,
		Trend:  DailyTrend(records, mode),
	}
	if len(records) > 0 {
		s.Stats = ConfidenceByLabel(records, mode)
		s.Dominant = counts[0].Label
	}
	return s
}

func labelOf(r models.Record, mode models.Mode) string {
	if label := r.LabelFor(mode); label != "" {
		return label
	}
	return UnknownLabel
}
