package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAIRequestTimeout = 60 * time.Second

var ErrMissingOpenAIKey = errors.New("[OpenAIClient] missing OPENAI_API_KEY")

type OpenAIClient struct {
	Client *openai.Client
}

func NewOpenAIClient(apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrMissingOpenAIKey
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	}, opts...)

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.Duration("timeout", openAIRequestTimeout))
	return &OpenAIClient{Client: openai.NewClient(opts...)}, nil
}
