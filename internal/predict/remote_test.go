package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewRemote(&clients.HuggingFaceClient{
		Client:     srv.Client(),
		Endpoint:   srv.URL,
		Backoff:    time.Millisecond,
		MaxRetries: 3,
	})
}

func echoLabels(w http.ResponseWriter, r *http.Request) {
	var req models.SentimentAnalysisBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := models.SentimentAnalysisBatchResponse{}
	// answer in reverse order to make sure results are matched by id
	for i := len(req.Posts) - 1; i >= 0; i-- {
		p := req.Posts[i]
		resp = append(resp, models.SentimentAnalysisResponse{
			ContentID:      p.ContentID,
			SentimentLabel: "label-" + p.Text,
			Confidence:     0.75,
		})
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestRemote_Predict(t *testing.T) {
	r := newTestRemote(t, echoLabels)

	preds, err := r.Predict(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, []models.Prediction{
		{Label: "label-a", Confidence: 0.75},
		{Label: "label-b", Confidence: 0.75},
		{Label: "label-c", Confidence: 0.75},
	}, preds)
}

func TestRemote_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	r := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		echoLabels(w, req)
	})

	preds, err := r.Predict(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "label-x", preds[0].Label)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRemote_GivesUp(t *testing.T) {
	r := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := r.Predict(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestRemote_MissingResult(t *testing.T) {
	r := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := r.Predict(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrShortResponse)
}
