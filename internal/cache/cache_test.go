package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/iconidentify/bskye/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEntry_EncodeDecode(t *testing.T) {
	e := &Entry{
		Status: http.StatusOK,
		Header: http.Header{
			"Content-Type":  {"text/html; charset=UTF-8"},
			"Platform-Name": {"discord"},
		},
		Body: []byte("<!DOCTYPE html>"),
	}

	data, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := DecodeEntry(data)
	if err != nil {
		t.Fatalf("DecodeEntry() error = %v", err)
	}

	if got.Status != e.Status || string(got.Body) != string(e.Body) {
		t.Errorf("got %+v, want %+v", got, e)
	}
	if got.Header.Get("Platform-Name") != "discord" {
		t.Errorf("Header = %v", got.Header)
	}
}

func TestDecodeEntry_Garbage(t *testing.T) {
	if _, err := DecodeEntry([]byte{0xc1}); err == nil {
		t.Error("DecodeEntry should fail on invalid data")
	}
}

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() on empty store error = %v, want ErrMiss", err)
	}

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want v", got)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("v"), time.Hour)

	now = now.Add(59 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Errorf("Get() before expiry error = %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() at expiry error = %v, want ErrMiss", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want expired entry removed", s.Len())
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), time.Hour)
	_ = s.Set(ctx, "b", []byte("2"), time.Hour)
	_ = s.Set(ctx, "c", []byte("3"), time.Hour)

	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrMiss) {
		t.Error("oldest entry should be evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, err := s.Get(ctx, k); err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
		}
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestMemoryStore_OverwriteKeepsNewValue(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("old"), time.Hour)
	_ = s.Set(ctx, "b", []byte("2"), time.Hour)
	_ = s.Set(ctx, "a", []byte("new"), time.Hour)
	_ = s.Set(ctx, "c", []byte("3"), time.Hour)

	// The stale queue slot for the first "a" is consumed without evicting
	// the rewritten value, so "b" goes instead.
	got, err := s.Get(ctx, "a")
	if err != nil || string(got) != "new" {
		t.Errorf("Get(a) = %q, %v; want new", got, err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrMiss) {
		t.Error("b should be evicted")
	}
}

func TestMemoryStore_QueueStaysBounded(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_ = s.Set(ctx, "same", []byte("v"), time.Hour)
	}

	if len(s.queue) > 2*s.maxEntries {
		t.Errorf("queue length = %d, want at most %d", len(s.queue), 2*s.maxEntries)
	}
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("v"), time.Hour)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() error = %v, want ErrMiss", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    string
		wantErr bool
	}{
		{"memory", config.CacheConfig{Backend: config.CacheBackendMemory, MaxEntries: 5}, "*cache.MemoryStore", false},
		{"none", config.CacheConfig{Backend: config.CacheBackendNone}, "cache.NopStore", false},
		{"bad redis url", config.CacheConfig{Backend: config.CacheBackendRedis, RedisURL: "not-a-url"}, "", true},
		{"unknown", config.CacheConfig{Backend: "memcached"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(tt.cfg, testLogger())
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := typeName(store); got != tt.want {
				t.Errorf("New() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*cache.MemoryStore"
	case NopStore:
		return "cache.NopStore"
	case *RedisStore:
		return "*cache.RedisStore"
	}
	return "unknown"
}

// TestRedisStore runs against a live Redis when BSKYE_TEST_REDIS_URL is set.
func TestRedisStore(t *testing.T) {
	uri := os.Getenv("BSKYE_TEST_REDIS_URL")
	if uri == "" {
		t.Skip("BSKYE_TEST_REDIS_URL not set")
	}

	s, err := NewRedisStore(uri, "bskye-test:")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(missing) error = %v, want ErrMiss", err)
	}
	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get(k) = %q, %v", got, err)
	}
}
