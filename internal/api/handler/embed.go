package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/bskye/internal/api/middleware"
	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/service"
)

// EmbedRenderer produces preview documents for posts and profiles.
type EmbedRenderer interface {
	RenderPost(ctx context.Context, req service.PostRequest) (string, error)
	DirectMedia(ctx context.Context, req service.PostRequest, index int) (*service.DirectResult, error)
	RenderProfile(ctx context.Context, req service.ProfileRequest) (string, error)
}

// EmbedHandler handles the post and profile preview endpoints.
type EmbedHandler struct {
	svc              EmbedRenderer
	directHostPrefix string
	logger           *slog.Logger
}

// NewEmbedHandler creates a new embed handler. Requests whose host starts
// with directHostPrefix are answered with a redirect to the post's media.
func NewEmbedHandler(svc EmbedRenderer, directHostPrefix string, logger *slog.Logger) *EmbedHandler {
	return &EmbedHandler{
		svc:              svc,
		directHostPrefix: directHostPrefix,
		logger:           logger,
	}
}

// Post handles GET /profile/{handle}/post/{postID} and its /{index} form.
func (h *EmbedHandler) Post(w http.ResponseWriter, r *http.Request) {
	req := service.PostRequest{
		Platform: middleware.PlatformFor(r.Context()),
		Host:     middleware.Origin(r),
		Handle:   chi.URLParam(r, "handle"),
		PostID:   chi.URLParam(r, "postID"),
	}

	if middleware.IsDirect(r, h.directHostPrefix) {
		h.direct(w, r, req)
		return
	}

	doc, err := h.svc.RenderPost(r.Context(), req)
	if err != nil {
		h.fail(r, err)
		writeMessage(w, http.StatusBadRequest, "Failed to get post from Bluesky API")
		return
	}
	writeHTML(w, doc)
}

func (h *EmbedHandler) direct(w http.ResponseWriter, r *http.Request, req service.PostRequest) {
	result, err := h.svc.DirectMedia(r.Context(), req, mediaIndex(chi.URLParam(r, "index")))
	if err != nil {
		h.fail(r, err)
		writeMessage(w, http.StatusBadRequest, "Failed to get post from Bluesky API")
		return
	}
	if result.Link != "" {
		http.Redirect(w, r, result.Link, http.StatusFound)
		return
	}
	writeHTML(w, result.Document)
}

// Profile handles GET /profile/{handle}.
func (h *EmbedHandler) Profile(w http.ResponseWriter, r *http.Request) {
	req := service.ProfileRequest{
		Platform: middleware.PlatformFor(r.Context()),
		Host:     middleware.Origin(r),
		Handle:   chi.URLParam(r, "handle"),
	}

	doc, err := h.svc.RenderProfile(r.Context(), req)
	if err != nil {
		h.fail(r, err)
		writeMessage(w, http.StatusBadRequest, "Failed to get user from Bluesky API")
		return
	}
	writeHTML(w, doc)
}

// fail logs an upstream failure and reports it unless the record is simply
// missing.
func (h *EmbedHandler) fail(r *http.Request, err error) {
	h.logger.Error("bluesky request failed", "url", r.URL.String(), "error", err)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// mediaIndex parses the 1-based media index. Missing or malformed values
// select the first item.
func mediaIndex(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}
