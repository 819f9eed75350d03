package charts

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counts = []models.LabelCount{
	{Label: "positive", Count: 60},
	{Label: "negative", Count: 40},
}

func TestDistribution(t *testing.T) {
	for _, kind := range []Kind{KindPie, KindBar} {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Distribution(&buf, counts, kind, "Sentiment Distribution"))

			out := buf.String()
			assert.True(t, strings.HasPrefix(out, "<svg"))
			assert.Contains(t, out, "positive (60)")
		})
	}
}

func TestDistribution_SingleLabelBar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Distribution(&buf, []models.LabelCount{{Label: "joy", Count: 3}}, KindBar, ""))
}

func TestDistribution_NoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Distribution(&buf, nil, KindPie, ""), ErrNoData)
	assert.ErrorIs(t, Distribution(&buf, []models.LabelCount{{Label: "x"}}, KindBar, ""), ErrNoData)
}

func TestTrend(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Trend(&buf, []models.DailyCount{
		{Day: day, Label: "positive", Count: 2},
		{Day: day, Label: "negative", Count: 1},
	}))
	assert.Contains(t, buf.String(), "<svg")

	assert.ErrorIs(t, Trend(&buf, nil), ErrNoData)
}

func TestBoxPlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BoxPlot(&buf, []models.LabelValues{
		{Label: "negative", Values: []float64{0.3}},
		{Label: "positive", Values: []float64{0.5, 0.6, 0.7, 0.8, 0.99}},
	}))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "positive (n=5)")
	assert.Contains(t, out, "negative (n=1)")

	assert.ErrorIs(t, BoxPlot(&buf, nil), ErrNoData)
	assert.ErrorIs(t, BoxPlot(&buf, []models.LabelValues{{Label: "joy"}}), ErrNoData)
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "2ecc71", ColorFor("Positive"))
	assert.Equal(t, ColorFor("mystery"), ColorFor("mystery"))
}
