package evaluation

import (
	"testing"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Perfect(t *testing.T) {
	y := []string{"pos", "neg", "neu", "pos"}

	report, err := Evaluate(y, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, report.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, report.Precision, 1e-9)
	assert.InDelta(t, 1.0, report.Recall, 1e-9)
	assert.InDelta(t, 1.0, report.F1, 1e-9)
}

func TestEvaluate_Weighted(t *testing.T) {
	yTrue := []string{"pos", "pos", "pos", "neg"}
	yPred := []string{"pos", "pos", "neg", "neg"}

	report, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)

	// pos: p=1 r=2/3 f1=0.8 support 3; neg: p=0.5 r=1 f1=2/3 support 1
	assert.InDelta(t, 0.75, report.Accuracy, 1e-9)
	assert.InDelta(t, 0.875, report.Precision, 1e-9)
	assert.InDelta(t, 0.75, report.Recall, 1e-9)
	assert.InDelta(t, 0.75*0.8+0.25*(2.0/3.0), report.F1, 1e-9)

	require.Len(t, report.PerLabel, 2)
	assert.Equal(t, "neg", report.PerLabel[0].Label)
	assert.Equal(t, 3, report.PerLabel[1].Support)
}

func TestEvaluate_PredictedLabelOutsideTruth(t *testing.T) {
	report, err := Evaluate([]string{"a", "a"}, []string{"b", "a"})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, report.Accuracy, 1e-9)
	// b has no support so it adds nothing to the weighted averages
	assert.InDelta(t, 1.0, report.Precision, 1e-9)
	assert.InDelta(t, 0.5, report.Recall, 1e-9)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate([]string{"a"}, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Evaluate(nil, nil)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestEvaluateRecords(t *testing.T) {
	records := []models.Record{
		{Label: "Positive", Sentiment: "POSITIVE"},
		{Label: "negative", Sentiment: "positive"},
		{Sentiment: "negative"},
	}

	report, err := EvaluateRecords(records, models.ModeSentiment)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, report.Accuracy, 1e-9)

	_, err = EvaluateRecords(records[2:], models.ModeSentiment)
	assert.ErrorIs(t, err, ErrNoSamples)
}
