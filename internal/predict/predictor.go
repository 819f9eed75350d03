// Package predict wraps the classifiers that turn clean text into a label and a
// confidence. None of them are implemented here; each backend calls out to a
// lexicon, a local transformer, a remote inference service or an LLM.
package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/spacesedan/sentidash/internal/models"
)

const (
	BackendVader       = "vader"
	BackendTransformer = "transformer"
	BackendRemote      = "remote"
	BackendOpenAI      = "openai"
)

var (
	ErrUnknownBackend  = errors.New("unknown predictor backend")
	ErrModeUnsupported = errors.New("backend does not support this mode")
	ErrShortResponse   = errors.New("predictor returned fewer results than inputs")
)

// Predictor labels a batch of texts. Implementations return exactly one
// prediction per input, in input order.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, texts []string) ([]models.Prediction, error)
}

func checkLength(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: %w (%d of %d)", name, ErrShortResponse, got, want)
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
