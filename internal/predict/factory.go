package predict

import (
	"fmt"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
)

// New builds the predictor configured for mode. Sentiment works with every
// backend; emotion needs a model that knows emotions.
func New(cfg config.Config, mode models.Mode) (Predictor, error) {
	switch cfg.Backend {
	case BackendVader:
		if mode == models.ModeEmotion {
			return nil, fmt.Errorf("%s: %w: %s", BackendVader, ErrModeUnsupported, mode)
		}
		return NewVader(cfg.VaderThreshold), nil

	case BackendTransformer:
		model := cfg.SentimentModel
		if mode == models.ModeEmotion {
			model = cfg.EmotionModel
		}
		return NewTransformer(model, cfg.ModelDir), nil

	case BackendRemote:
		if mode == models.ModeEmotion {
			return nil, fmt.Errorf("%s: %w: %s", BackendRemote, ErrModeUnsupported, mode)
		}
		return NewRemote(clients.NewHuggingFaceClient(cfg.RemoteEndpoint, cfg.Env)), nil

	case BackendOpenAI:
		client, err := clients.NewOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		labels := SentimentLabels
		if mode == models.ModeEmotion {
			labels = EmotionLabels
		}
		return NewOpenAI(client, cfg.OpenAIModel, labels), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// NewCache returns a Valkey-backed cache when an address is configured and an
// in-process one otherwise.
func NewCache(cfg config.Config) (Cache, func(), error) {
	if cfg.ValkeyAddress == "" {
		return NewMemoryCache(cfg.CacheTTL), func() {}, nil
	}

	client, err := clients.NewValkeyClient(clients.ValkeyOptions{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		TLS:      cfg.ValkeyTLS,
	})
	if err != nil {
		return nil, nil, err
	}
	return NewValkeyCache(client, cfg.CacheTTL), client.Close, nil
}
