// Package charts renders the dashboard's charts as SVG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spacesedan/sentidash/internal/models"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoData = errors.New("no data to chart")

type Kind string

const (
	KindPie Kind = "pie"
	KindBar Kind = "bar"
)

func ParseKind(s string) Kind {
	if strings.EqualFold(s, string(KindBar)) {
		return KindBar
	}
	return KindPie
}

const (
	width  = 640
	height = 420
)

var labelColors = map[string]string{
	"positive": "2ecc71",
	"negative": "e74c3c",
	"neutral":  "95a5a6",
	"joy":      "f1c40f",
	"sadness":  "3498db",
	"anger":    "c0392b",
	"fear":     "8e44ad",
	"surprise": "e67e22",
	"disgust":  "16a085",
	"love":     "fd79a8",
	"unknown":  "bdc3c7",
}

var fallbackPalette = []string{"1abc9c", "34495e", "d35400", "7f8c8d", "2980b9", "27ae60"}

// ColorFor returns a stable hex color for a label.
func ColorFor(label string) string {
	if c, ok := labelColors[strings.ToLower(label)]; ok {
		return c
	}
	h := 0
	for _, r := range label {
		h = (h*31 + int(r)) % len(fallbackPalette)
	}
	return fallbackPalette[h]
}

func styleFor(label string) chart.Style {
	color := drawing.ColorFromHex(ColorFor(label))
	return chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 2}
}

// Distribution renders label counts as a pie or bar chart.
func Distribution(w io.Writer, counts []models.LabelCount, kind Kind, title string) error {
	values := make([]chart.Value, 0, len(counts))
	maxCount := 0
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Label, c.Count),
			Value: float64(c.Count),
			Style: styleFor(c.Label),
		})
		maxCount = max(maxCount, c.Count)
	}
	if len(values) == 0 {
		return ErrNoData
	}

	if kind == KindBar {
		bars := chart.BarChart{
			Title:      title,
			Background: chart.Style{Padding: chart.Box{Top: 40}},
			Width:      width,
			Height:     height,
			BarWidth:   60,
			YAxis: chart.YAxis{
				Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
			},
			Bars: values,
		}
		return bars.Render(chart.SVG, w)
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pie.Render(chart.SVG, w)
}

// Trend renders one line per label over calendar days.
func Trend(w io.Writer, trend []models.DailyCount) error {
	if len(trend) == 0 {
		return ErrNoData
	}

	byLabel := map[string]map[time.Time]float64{}
	var days []time.Time
	seenDay := map[time.Time]bool{}
	maxCount := 0
	for _, d := range trend {
		if byLabel[d.Label] == nil {
			byLabel[d.Label] = map[time.Time]float64{}
		}
		byLabel[d.Label][d.Day] += float64(d.Count)
		maxCount = max(maxCount, d.Count)
		if !seenDay[d.Day] {
			seenDay[d.Day] = true
			days = append(days, d.Day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	// go-chart needs two distinct x values to build a range
	if len(days) == 1 {
		days = append(days, days[0].AddDate(0, 0, 1))
	}

	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	series := make([]chart.Series, 0, len(labels))
	for _, l := range labels {
		ys := make([]float64, len(days))
		for i, day := range days {
			ys[i] = byLabel[l][day]
		}
		st := styleFor(l)
		st.FillColor = drawing.ColorTransparent
		st.DotWidth = 3
		series = append(series, chart.TimeSeries{Name: l, XValues: days, YValues: ys, Style: st})
	}

	graph := chart.Chart{
		Width:      width * 2,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis: chart.YAxis{
			Name:  "records",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.SVG, w)
}
