package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/bskye/internal/api/handler"
	"github.com/iconidentify/bskye/internal/cache"
	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/media"
	"github.com/iconidentify/bskye/internal/render"
	"github.com/iconidentify/bskye/internal/service"
)

const (
	discordAgent = "Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)"
	imageURL     = "https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:alice/bafyimg@jpeg"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFetcher struct {
	postCalls int
}

func (f *stubFetcher) FetchPostThread(ctx context.Context, atURI string) (*domain.ThreadView, error) {
	f.postCalls++
	return &domain.ThreadView{Post: domain.Post{
		Author: domain.Author{DID: "did:plc:alice", Handle: "alice.bsky.social", DisplayName: "Alice"},
		Text:   "look at this",
		Embed: &domain.ImagesEmbed{Images: []domain.Image{
			{BlobRef: "bafyimg", MimeType: "image/jpeg", Fullsize: imageURL},
		}},
	}}, nil
}

func (f *stubFetcher) FetchProfile(ctx context.Context, actor string) (*domain.Profile, error) {
	return &domain.Profile{
		Author:         domain.Author{DID: "did:plc:alice", Handle: actor, DisplayName: "Alice"},
		FollowersCount: domain.Count(10),
	}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubFetcher) {
	t.Helper()

	fetcher := &stubFetcher{}
	logger := testLogger()
	svc := service.NewEmbedService(fetcher,
		media.NewClassifier("https://bsky.social/xrpc/com.atproto.sync.getBlob", nil),
		render.DefaultSite, logger)

	r := NewRouter(
		handler.NewEmbedHandler(svc, "d.", logger),
		handler.NewOEmbedHandler(render.DefaultSite),
		handler.NewHealthHandler(cache.NopStore{}),
		RouterOptions{
			RepositoryURL:         "https://github.com/example/bskye",
			WebURL:                "https://bsky.app",
			DirectHostPrefix:      "d.",
			RedirectUnknownAgents: true,
			Cache:                 cache.NewMemoryStore(100),
			CacheTTL:              time.Hour,
			Logger:                logger,
		},
	)
	return r, fetcher
}

func do(h http.Handler, host, target, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = host
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Redirects(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name         string
		host         string
		target       string
		userAgent    string
		wantLocation string
	}{
		{"root", "bskye.app", "/", discordAgent, "https://github.com/example/bskye"},
		{"browser post", "bskye.app", "/profile/alice.bsky.social/post/3k", "Mozilla/5.0", "https://bsky.app/profile/alice.bsky.social/post/3k"},
		{"browser profile", "bskye.app", "/profile/alice.bsky.social", "Mozilla/5.0", "https://bsky.app/profile/alice.bsky.social"},
		{"direct host", "d.bskye.app", "/profile/alice.bsky.social/post/3k", "Mozilla/5.0", imageURL},
		{"indexed media", "bskye.app", "/profile/alice.bsky.social/post/3k/1", discordAgent, imageURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.host, tt.target, tt.userAgent)
			if rec.Code != http.StatusFound {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestRouter_PostPreviewIsCached(t *testing.T) {
	r, fetcher := newTestRouter(t)

	for i := range 2 {
		rec := do(r, "bskye.app", "/profile/alice.bsky.social/post/3k", discordAgent)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
		body := rec.Body.String()
		if !strings.HasPrefix(body, "<!DOCTYPE html>") && !strings.HasPrefix(body, "<html") {
			t.Errorf("request %d: unexpected body %q", i, body)
		}
		if !strings.Contains(body, imageURL) {
			t.Errorf("request %d: body does not reference image", i)
		}
		if got := rec.Header().Get("platform-name"); got != "discord" {
			t.Errorf("request %d: platform-name = %q", i, got)
		}
		if got := rec.Header().Get("Cache-Control"); got != "max-age=3600" {
			t.Errorf("request %d: Cache-Control = %q", i, got)
		}
	}

	if fetcher.postCalls != 1 {
		t.Errorf("post fetches = %d, want 1", fetcher.postCalls)
	}
}

func TestRouter_Profile(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, "bskye.app", "/profile/alice.bsky.social|2", "WhatsApp/2.23")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("platform-name"); got != "whatsapp" {
		t.Errorf("platform-name = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `property="og:title"`) {
		t.Error("body has no og:title")
	}
}

func TestRouter_OEmbed(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/oembed?link=https%3A%2F%2Fbsky.app&title=Alice", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	rec = do(r, "bskye.app", "/oembed?link=https%3A%2F%2Fbsky.app", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/health/"} {
		rec := do(r, "bskye.app", path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
