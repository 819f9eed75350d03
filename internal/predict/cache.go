package predict

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
)

// Cache stores predictions by key. Misses are not errors.
type Cache interface {
	Get(ctx context.Context, key string) (models.Prediction, bool)
	Set(ctx context.Context, key string, p models.Prediction)
}

type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (models.Prediction, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return models.Prediction{}, false
	}
	p, ok := v.(models.Prediction)
	return p, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, p models.Prediction) {
	m.c.SetDefault(key, p)
}

func (m *MemoryCache) Len() int { return m.c.ItemCount() }

// ValkeyCache shares predictions between dashboard replicas.
type ValkeyCache struct {
	client *clients.ValkeyClient
	ttl    time.Duration
}

func NewValkeyCache(client *clients.ValkeyClient, ttl time.Duration) *ValkeyCache {
	return &ValkeyCache{client: client, ttl: ttl}
}

func (v *ValkeyCache) Get(ctx context.Context, key string) (models.Prediction, bool) {
	raw, found, err := v.client.Get(ctx, "prediction:"+key)
	if err != nil {
		slog.Warn("[ValkeyCache] Get failed", slog.String("error", err.Error()))
		return models.Prediction{}, false
	}
	if !found {
		return models.Prediction{}, false
	}

	var p models.Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.Prediction{}, false
	}
	return p, true
}

func (v *ValkeyCache) Set(ctx context.Context, key string, p models.Prediction) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := v.client.SetWithTTL(ctx, "prediction:"+key, string(raw), v.ttl); err != nil {
		slog.Warn("[ValkeyCache] Set failed", slog.String("error", err.Error()))
	}
}

// Cached consults the cache before calling next and only sends the misses.
type Cached struct {
	next  Predictor
	cache Cache
}

func NewCached(next Predictor, cache Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Predict(ctx context.Context, texts []string) ([]models.Prediction, error) {
	out := make([]models.Prediction, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		if p, ok := c.cache.Get(ctx, c.key(text)); ok {
			out[i] = p
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	preds, err := c.next.Predict(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if err := checkLength(c.Name(), len(preds), len(missTexts)); err != nil {
		return nil, err
	}

	for j, p := range preds {
		out[missIdx[j]] = p
		c.cache.Set(ctx, c.key(missTexts[j]), p)
	}
	return out, nil
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(c.next.Name() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
