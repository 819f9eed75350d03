package predict

import (
	"context"
	"math"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/sentidash/internal/models"
)

const DefaultVaderThreshold = 0.20

// Vader scores text with the VADER lexicon. It only knows sentiment.
type Vader struct {
	analyzer  *govader.SentimentIntensityAnalyzer
	threshold float64
}

func NewVader(threshold float64) *Vader {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultVaderThreshold
	}
	return &Vader{
		analyzer:  govader.NewSentimentIntensityAnalyzer(),
		threshold: threshold,
	}
}

func (v *Vader) Name() string { return BackendVader }

func (v *Vader) Predict(ctx context.Context, texts []string) ([]models.Prediction, error) {
	out := make([]models.Prediction, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, label := v.Score(text)
		out = append(out, models.Prediction{Label: label, Confidence: confidenceFor(label, score)})
	}
	return out, nil
}

// Score returns the compound polarity and its label.
func (v *Vader) Score(text string) (float64, string) {
	score := v.analyzer.PolarityScores(text).Compound

	var label string
	if score >= v.threshold {
		label = "positive"
	} else if score <= -v.threshold {
		label = "negative"
	} else {
		label = "neutral"
	}

	return score, label
}

func confidenceFor(label string, compound float64) float64 {
	if label == "neutral" {
		return clamp01(1 - math.Abs(compound))
	}
	return clamp01(math.Abs(compound))
}
