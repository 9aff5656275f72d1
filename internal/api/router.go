package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/iconidentify/bskye/internal/api/handler"
	mw "github.com/iconidentify/bskye/internal/api/middleware"
	"github.com/iconidentify/bskye/internal/cache"
)

// RouterOptions configures the cross-cutting behavior of the router.
type RouterOptions struct {
	RepositoryURL         string // target of GET /
	WebURL                string // target for visitors that are not scrapers
	DirectHostPrefix      string
	RedirectUnknownAgents bool
	Cache                 cache.Store
	CacheTTL              time.Duration
	RequestTimeout        time.Duration
	Logger                *slog.Logger
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	embedHandler *handler.EmbedHandler,
	oembedHandler *handler.OEmbedHandler,
	healthHandler *handler.HealthHandler,
	opts RouterOptions,
) *chi.Mux {
	if opts.Cache == nil {
		opts.Cache = cache.NopStore{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Platform)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	// Health endpoints (never cached)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	r.Get("/", handler.Redirect(opts.RepositoryURL))

	responseCache := mw.Cache(opts.Cache, opts.CacheTTL, opts.Logger)

	// oEmbed documents are fetched cross-origin by some consumers
	r.Route("/oembed", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		}).Handler)
		r.Use(responseCache)
		r.Get("/", oembedHandler.Get)
	})

	r.Group(func(r chi.Router) {
		if opts.RedirectUnknownAgents {
			r.Use(mw.RedirectUnknownAgents(opts.WebURL, opts.DirectHostPrefix))
		}
		r.Use(responseCache)

		r.Get("/profile/{handle}", embedHandler.Profile)
		r.Get("/profile/{handle}/post/{postID}", embedHandler.Post)
		r.Get("/profile/{handle}/post/{postID}/{index}", embedHandler.Post)
	})

	return r
}
