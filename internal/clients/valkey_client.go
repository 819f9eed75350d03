package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.RWMutex

	retryBackoff time.Duration
}

// CommandFunc builds a command against the current client. valkey-go recycles
// a command once sent, so every attempt builds a fresh one.
type CommandFunc func(b valkey.Builder) valkey.Completed

type MultiCommandFunc func(b valkey.Builder) []valkey.Completed

func NewValkeyClient(opts ValkeyOptions) (*ValkeyClient, error) {
	client, err := dialValkey(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", opts.Address))
	return &ValkeyClient{Client: client, opts: opts, retryBackoff: 250 * time.Millisecond}, nil
}

func dialValkey(opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	return client, nil
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := dialValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	if vc == nil {
		return
	}
	if c := vc.client(); c != nil {
		c.Close()
	}
}

// Get returns the value at key. found is false when the key does not exist.
func (vc *ValkeyClient) Get(ctx context.Context, key string) (value string, found bool, err error) {
	res := vc.DoWithRetry(ctx, func(b valkey.Builder) valkey.Completed {
		return b.Get().Key(key).Build()
	}, 3)
	value, err = res.ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetWithTTL stores value at key and sets its expiry.
func (vc *ValkeyClient) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	results := vc.DoMultiWithRetry(ctx, func(b valkey.Builder) []valkey.Completed {
		return []valkey.Completed{
			b.Set().Key(key).Value(value).Build(),
			b.Expire().Key(key).Seconds(int64(ttl.Seconds())).Build(),
		}
	}, 3)

	for _, res := range results {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, build MultiCommandFunc, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult
	vc.retry(retries, func() error {
		c := vc.client()
		results = c.DoMulti(ctx, build(c.B())...)
		for _, r := range results {
			if err := r.Error(); err != nil && !valkey.IsValkeyNil(err) {
				return err
			}
		}
		return nil
	})
	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build CommandFunc, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	vc.retry(retries, func() error {
		c := vc.client()
		result = c.Do(ctx, build(c.B()))
		if err := result.Error(); err != nil && !valkey.IsValkeyNil(err) {
			return err
		}
		return nil
	})
	return result
}

// retry runs attempt until it succeeds or retries run out, reconnecting after
// connection errors.
func (vc *ValkeyClient) retry(retries int, attempt func() error) {
	for i := 0; i < retries; i++ {
		err := attempt()
		if err == nil {
			return
		}

		slog.Warn("[ValkeyClient] Command failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient()
		}
		if i < retries-1 {
			time.Sleep(vc.retryBackoff)
		}
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
