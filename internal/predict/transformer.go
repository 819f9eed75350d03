package predict

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/sentidash/internal/models"
)

// Transformer runs a Hugging Face text-classification model locally through a
// hugot pipeline. The ONNX export is downloaded into the model directory on
// first use.
type Transformer struct {
	modelName string
	modelDir  string

	once     sync.Once
	initErr  error
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.Mutex
}

func NewTransformer(modelName, modelDir string) *Transformer {
	return &Transformer{modelName: modelName, modelDir: modelDir}
}

func (t *Transformer) Name() string { return BackendTransformer + ":" + t.modelName }

// modelPath is where hugot.DownloadModel places a repository.
func (t *Transformer) modelPath() string {
	return filepath.Join(t.modelDir, strings.ReplaceAll(t.modelName, "/", "_"))
}

func (t *Transformer) init() error {
	t.once.Do(func() {
		if err := os.MkdirAll(t.modelDir, os.ModePerm); err != nil {
			t.initErr = fmt.Errorf("[Transformer] create model directory: %w", err)
			return
		}

		path := t.modelPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Info("[Transformer] Model not found, downloading...",
				slog.String("model", t.modelName))
			path, err = hugot.DownloadModel(t.modelName, t.modelDir, hugot.NewDownloadOptions())
			if err != nil {
				t.initErr = fmt.Errorf("[Transformer] download %s: %w", t.modelName, err)
				return
			}
			slog.Info("[Transformer] Model downloaded successfully", slog.String("path", path))
		} else {
			slog.Info("[Transformer] Using existing model", slog.String("path", path))
		}

		session, err := hugot.NewORTSession()
		if err != nil {
			t.initErr = fmt.Errorf("[Transformer] initialize hugot session: %w", err)
			return
		}

		config := hugot.TextClassificationConfig{
			ModelPath: path,
			Name:      strings.ReplaceAll(t.modelName, "/", "-") + "-pipeline",
		}
		pipeline, err := hugot.NewPipeline(session, config)
		if err != nil {
			session.Destroy()
			t.initErr = fmt.Errorf("[Transformer] initialize pipeline: %w", err)
			return
		}

		t.session = session
		t.pipeline = pipeline
	})
	return t.initErr
}

func (t *Transformer) Predict(ctx context.Context, texts []string) ([]models.Prediction, error) {
	if err := t.init(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	t.mu.Lock()
	output, err := t.pipeline.RunPipeline(texts)
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("[Transformer] run pipeline: %w", err)
	}

	if err := checkLength(t.Name(), len(output.ClassificationOutputs), len(texts)); err != nil {
		return nil, err
	}

	out := make([]models.Prediction, len(texts))
	for i, classes := range output.ClassificationOutputs {
		out[i] = topClass(classes)
	}
	return out, nil
}

func topClass(classes []pipelines.ClassificationOutput) models.Prediction {
	var best models.Prediction
	for i, c := range classes {
		if i == 0 || float64(c.Score) > best.Confidence {
			best = models.Prediction{Label: c.Label, Confidence: clamp01(float64(c.Score))}
		}
	}
	return best
}

func (t *Transformer) Close() error {
	if t.session == nil {
		return nil
	}
	return t.session.Destroy()
}
