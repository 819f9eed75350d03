package predict

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
)

// Remote sends batches to an HTTP inference service that answers with one
// result per content id.
type Remote struct {
	client *clients.HuggingFaceClient
}

func NewRemote(client *clients.HuggingFaceClient) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Name() string { return BackendRemote }

func (r *Remote) Predict(ctx context.Context, texts []string) ([]models.Prediction, error) {
	req := models.SentimentAnalysisBatchRequest{Posts: make([]models.SentimentAnalysisRequest, len(texts))}
	for i, text := range texts {
		req.Posts[i] = models.SentimentAnalysisRequest{ContentID: strconv.Itoa(i), Text: text}
	}

	resp, err := r.client.GetBatchedSentimentAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	scores := mapSentimentScoreToContentID(resp)
	out := make([]models.Prediction, len(texts))
	for i := range texts {
		score, ok := scores[strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("remote: no result for input %d: %w", i, ErrShortResponse)
		}
		out[i] = models.Prediction{Label: score.SentimentLabel, Confidence: clamp01(score.Confidence)}
	}
	return out, nil
}

// mapSentimentScoreToContentID indexes the response so lookups stay linear.
func mapSentimentScoreToContentID(scores models.SentimentAnalysisBatchResponse) map[string]models.SentimentAnalysisResponse {
	scoreMap := make(map[string]models.SentimentAnalysisResponse, len(scores))
	for _, score := range scores {
		scoreMap[score.ContentID] = score
	}
	return scoreMap
}
