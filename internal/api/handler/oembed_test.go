package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/bskye/internal/render"
)

func TestOEmbedHandler_Get(t *testing.T) {
	h := NewOEmbedHandler(render.DefaultSite)

	req := httptest.NewRequest(http.MethodGet,
		"/oembed?author=Tom+%26amp%3B+Jerry&link=https%3A%2F%2Fbsky.app%2Fprofile%2Fa%2Fpost%2Fb&title=Alice&provider=%F0%9F%92%AC+3", nil)
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	var resp render.OEmbed
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := render.OEmbed{
		AuthorName:   "Tom & Jerry",
		AuthorURL:    "https://bsky.app/profile/a/post/b",
		ProviderName: "bskye - 💬 3",
		ProviderURL:  "https://bskye.app/",
		Title:        "Alice",
		Type:         "link",
		Version:      "1.0",
	}
	if resp != want {
		t.Errorf("response = %+v, want %+v", resp, want)
	}
}

func TestOEmbedHandler_MissingParameters(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"no params", ""},
		{"missing title", "?link=https%3A%2F%2Fbsky.app"},
		{"missing link", "?title=Alice"},
		{"empty title", "?link=https%3A%2F%2Fbsky.app&title="},
	}

	h := NewOEmbedHandler(render.DefaultSite)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Get(w, httptest.NewRequest(http.MethodGet, "/oembed"+tt.query, nil))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			var resp MessageResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Message != "missing parameters" {
				t.Errorf("message = %q", resp.Message)
			}
		})
	}
}
