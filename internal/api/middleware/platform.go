package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/bskye/internal/render"
)

// PlatformHeader names the response header carrying the detected platform.
const PlatformHeader = "platform-name"

type platformKey struct{}

type detectedPlatform struct {
	platform render.Platform
	ok       bool
}

// Platform detects the scraper from the User-Agent and stores it in the
// request context. Recognized platforms are echoed in PlatformHeader.
func Platform(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := render.Detect(r.UserAgent())
		if ok {
			w.Header().Set(PlatformHeader, p.Name())
		}
		ctx := context.WithValue(r.Context(), platformKey{}, detectedPlatform{platform: p, ok: ok})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DetectedPlatform returns the platform stored by Platform, if one was recognized.
func DetectedPlatform(ctx context.Context) (render.Platform, bool) {
	d, _ := ctx.Value(platformKey{}).(detectedPlatform)
	return d.platform, d.ok
}

// PlatformFor returns the detected platform, falling back to Discord.
func PlatformFor(ctx context.Context) render.Platform {
	if p, ok := DetectedPlatform(ctx); ok {
		return p
	}
	return render.Discord
}

// RedirectUnknownAgents sends visitors that are not a known scraper to the
// same path on webURL. Direct media requests are let through. It must run
// after routing so the media index URL parameter is visible.
func RedirectUnknownAgents(webURL, directHostPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := DetectedPlatform(r.Context()); !ok && !IsDirect(r, directHostPrefix) {
				http.Redirect(w, r, webURL+r.URL.Path, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsDirect reports whether r asks for the raw media instead of a preview:
// the host carries the direct prefix, or the path carries a media index.
func IsDirect(r *http.Request, directHostPrefix string) bool {
	if directHostPrefix != "" && strings.HasPrefix(strings.ToLower(r.Host), directHostPrefix) {
		return true
	}
	return chi.URLParam(r, "index") != ""
}

// Origin is the scheme and host the request was made to.
func Origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
