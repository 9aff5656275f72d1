package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iconidentify/bskye/internal/cache"
)

// cacheRecorder buffers a response so it can be stored after the handler
// returns.
type cacheRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
	maxAge      string
}

func (cr *cacheRecorder) WriteHeader(code int) {
	if cr.wroteHeader {
		return
	}
	cr.wroteHeader = true
	cr.status = code
	if code == http.StatusOK {
		cr.Header().Set("Cache-Control", cr.maxAge)
	}
	cr.ResponseWriter.WriteHeader(code)
}

func (cr *cacheRecorder) Write(b []byte) (int, error) {
	if !cr.wroteHeader {
		cr.WriteHeader(http.StatusOK)
	}
	cr.body.Write(b)
	return cr.ResponseWriter.Write(b)
}

// Cache serves GET responses from store, keyed by the full request URL and
// the detected platform. Only 200 responses are stored.
func Cache(store cache.Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	maxAge := "max-age=" + strconv.Itoa(int(ttl.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := CacheKey(r)
			if data, err := store.Get(r.Context(), key); err == nil {
				entry, err := cache.DecodeEntry(data)
				if err == nil {
					writeEntry(w, entry)
					return
				}
				logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
			} else if !errors.Is(err, cache.ErrMiss) {
				logger.Warn("cache get failed", "key", key, "error", err)
			}

			rec := &cacheRecorder{ResponseWriter: w, status: http.StatusOK, maxAge: maxAge}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			entry := &cache.Entry{
				Status: rec.status,
				Header: w.Header().Clone(),
				Body:   rec.body.Bytes(),
			}
			data, err := entry.Encode()
			if err != nil {
				logger.Warn("cache encode failed", "key", key, "error", err)
				return
			}
			if err := store.Set(r.Context(), key, data, ttl); err != nil {
				logger.Warn("cache set failed", "key", key, "error", err)
			}
		})
	}
}

// CacheKey is the request URL with the platform appended, so each scraper
// gets its own cached document. Unrecognized agents share Discord's.
func CacheKey(r *http.Request) string {
	platform := PlatformFor(r.Context()).Name()
	q := r.URL.Query()
	q.Set(PlatformHeader, platform)
	return Origin(r) + r.URL.Path + "?" + q.Encode()
}

func writeEntry(w http.ResponseWriter, e *cache.Entry) {
	h := w.Header()
	for k, v := range e.Header {
		h[k] = v
	}
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}
