// Package cache stores rendered responses so repeated scraper fetches of
// the same link skip the AppView.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/iconidentify/bskye/internal/config"
)

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value store with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Entry is a cached HTTP response.
type Entry struct {
	Status int         `msgpack:"s"`
	Header http.Header `msgpack:"h"`
	Body   []byte      `msgpack:"b"`
}

// Encode serializes an entry for storage.
func (e *Entry) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return data, nil
}

// DecodeEntry deserializes an entry written by Encode.
func DecodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &e, nil
}

// New opens the store selected by cfg.Backend.
func New(cfg config.CacheConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory:
		logger.Info("response cache enabled", "backend", cfg.Backend, "max_entries", cfg.MaxEntries, "ttl", cfg.TTL)
		return NewMemoryStore(cfg.MaxEntries), nil
	case config.CacheBackendRedis:
		store, err := NewRedisStore(cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("response cache enabled", "backend", cfg.Backend, "ttl", cfg.TTL)
		return store, nil
	case config.CacheBackendNone, "":
		logger.Info("response cache disabled")
		return NopStore{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// NopStore caches nothing.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Ping(context.Context) error                               { return nil }
func (NopStore) Close() error                                             { return nil }
