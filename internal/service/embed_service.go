package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iconidentify/bskye/internal/domain"
	"github.com/iconidentify/bskye/internal/format"
	"github.com/iconidentify/bskye/internal/media"
	"github.com/iconidentify/bskye/internal/render"
)

// Fetcher retrieves records from the Bluesky AppView.
type Fetcher interface {
	FetchPostThread(ctx context.Context, atURI string) (*domain.ThreadView, error)
	FetchProfile(ctx context.Context, actor string) (*domain.Profile, error)
}

// PostRequest identifies a post render.
type PostRequest struct {
	Platform render.Platform // nil renders for Discord
	Host     string          // scheme://host the request arrived on
	Handle   string
	PostID   string
}

// ProfileRequest identifies a profile render.
type ProfileRequest struct {
	Platform render.Platform
	Host     string
	// Handle is the profile path segment. Anything after a '|' is ignored.
	Handle string
}

// DirectResult is the outcome of a direct media request: a link to redirect
// to, or the regular preview document when the post has no media.
type DirectResult struct {
	Link     string
	Document string
}

// EmbedService fetches records and renders their preview documents.
type EmbedService struct {
	fetcher    Fetcher
	classifier *media.Classifier
	site       render.Site
	logger     *slog.Logger
}

// NewEmbedService creates a new embed service.
func NewEmbedService(fetcher Fetcher, classifier *media.Classifier, site render.Site, logger *slog.Logger) *EmbedService {
	return &EmbedService{
		fetcher:    fetcher,
		classifier: classifier,
		site:       site,
		logger:     logger,
	}
}

// RenderPost fetches a post and renders its preview document.
func (s *EmbedService) RenderPost(ctx context.Context, req PostRequest) (string, error) {
	in, err := s.resolvePost(ctx, req)
	if err != nil {
		return "", err
	}
	return s.postDocument(req.Platform, in), nil
}

// DirectMedia resolves the index-th media of a post (1-based, clamped).
// A post without media falls back to the preview document, with the
// fetched post reused.
func (s *EmbedService) DirectMedia(ctx context.Context, req PostRequest, index int) (*DirectResult, error) {
	in, err := s.resolvePost(ctx, req)
	if err != nil {
		return nil, err
	}

	if link, ok := media.DirectLink(in.Media, index); ok {
		return &DirectResult{Link: link}, nil
	}

	s.logger.Debug("direct media unavailable, rendering preview",
		"handle", req.Handle,
		"post_id", req.PostID,
		"error", domain.ErrNoMedia,
	)
	return &DirectResult{Document: s.postDocument(req.Platform, in)}, nil
}

// RenderProfile fetches a profile and renders its preview document.
func (s *EmbedService) RenderProfile(ctx context.Context, req ProfileRequest) (string, error) {
	actor := ProfileActor(req.Handle)
	profile, err := s.fetcher.FetchProfile(ctx, actor)
	if err != nil {
		return "", fmt.Errorf("fetch profile %s: %w", actor, err)
	}

	in := render.ProfileInput{
		Site:    s.site,
		Host:    req.Host,
		Profile: profile,
	}
	return render.Document(platformOrDefault(req.Platform).ProfileTags(in), in.CanonicalURL()), nil
}

func (s *EmbedService) resolvePost(ctx context.Context, req PostRequest) (render.PostInput, error) {
	atURI := format.PostATURI(req.Handle, req.PostID)
	thread, err := s.fetcher.FetchPostThread(ctx, atURI)
	if err != nil {
		return render.PostInput{}, fmt.Errorf("fetch post %s: %w", atURI, err)
	}

	post := &thread.Post
	m := s.classifier.Classify(post)
	s.logger.Debug("post classified",
		"uri", atURI,
		"media", string(m.Kind),
		"quote", m.Quote.HasText(),
	)

	return render.PostInput{
		Site:   s.site,
		Host:   req.Host,
		Handle: req.Handle,
		PostID: req.PostID,
		Post:   post,
		Media:  m,
	}, nil
}

func (s *EmbedService) postDocument(p render.Platform, in render.PostInput) string {
	return render.Document(platformOrDefault(p).PostTags(in), in.CanonicalURL())
}

// ProfileActor extracts the actor from a profile path segment, dropping a
// "|suffix" some clients append to defeat preview caches.
func ProfileActor(segment string) string {
	actor, _, _ := strings.Cut(segment, "|")
	return actor
}

func platformOrDefault(p render.Platform) render.Platform {
	if p == nil {
		return render.Discord
	}
	return p
}
