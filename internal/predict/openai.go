package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
)

var (
	SentimentLabels = []string{"positive", "negative", "neutral"}
	EmotionLabels   = []string{"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise"}
)

const openAIPrompt = `Classify each input text into **exactly one** of these labels: %s.

### **STRICT OUTPUT FORMAT**
You MUST return only **valid JSON**, formatted exactly as follows:
{
  "results": [
    {"index": 0, "label": "XXX", "confidence": 0.0}
  ]
}

### **REQUIREMENTS**
- Return one result per input, using the input's index.
- confidence is a number between 0 and 1.
- **No Markdown formatting** (no triple backticks, no explanations).
`

type openAIInput struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type openAIResult struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type openAIResponse struct {
	Results []openAIResult `json:"results"`
}

// OpenAI asks a chat model to pick a label from a fixed set.
type OpenAI struct {
	client *clients.OpenAIClient
	model  string
	labels []string
}

func NewOpenAI(client *clients.OpenAIClient, model string, labels []string) *OpenAI {
	return &OpenAI{client: client, model: model, labels: labels}
}

func (o *OpenAI) Name() string { return BackendOpenAI + ":" + o.model }

func (o *OpenAI) Predict(ctx context.Context, texts []string) ([]models.Prediction, error) {
	inputs := make([]openAIInput, len(texts))
	for i, text := range texts {
		inputs[i] = openAIInput{Index: i, Text: text}
	}
	batchBytes, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("[OpenAIPredictor] marshal batch: %w", err)
	}

	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		chatCompletion, err := o.client.Client.Chat.Completions.New(ctx,
			openai.ChatCompletionNewParams{
				Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(fmt.Sprintf(openAIPrompt, strings.Join(o.labels, ", "))),
					openai.UserMessage(string(batchBytes)),
				}),
				Model:       openai.F(openai.ChatModel(o.model)),
				Temperature: openai.Float(0),
			})
		if err != nil {
			slog.Warn("[OpenAIPredictor] OpenAI API call failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
		} else if len(chatCompletion.Choices) == 0 {
			slog.Warn("[OpenAIPredictor] OpenAI returned empty response, retrying",
				slog.Int("attempt", attempt))
		} else {
			preds, perr := parseOpenAIResponse(chatCompletion.Choices[0].Message.Content, len(texts), o.labels)
			if perr == nil {
				return preds, nil
			}
			slog.Warn("[OpenAIPredictor] Unusable response, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", perr.Error()))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return nil, fmt.Errorf("[OpenAIPredictor] no usable response after %d attempts", maxRetries)
}

func parseOpenAIResponse(raw string, n int, labels []string) ([]models.Prediction, error) {
	raw = cleanOpenAIResponse(raw)

	var resp openAIResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	allowed := make(map[string]bool, len(labels))
	for _, l := range labels {
		allowed[l] = true
	}

	out := make([]models.Prediction, n)
	seen := make([]bool, n)
	for _, r := range resp.Results {
		if r.Index < 0 || r.Index >= n {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(r.Label))
		if !allowed[label] {
			return nil, fmt.Errorf("label %q outside label set", r.Label)
		}
		out[r.Index] = models.Prediction{Label: label, Confidence: clamp01(r.Confidence)}
		seen[r.Index] = true
	}

	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("missing result for input %d: %w", i, ErrShortResponse)
		}
	}
	return out, nil
}

// cleanOpenAIResponse strips code fences the model sometimes adds anyway.
func cleanOpenAIResponse(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
