package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/iconidentify/bskye/internal/api"
	"github.com/iconidentify/bskye/internal/api/handler"
	"github.com/iconidentify/bskye/internal/cache"
	"github.com/iconidentify/bskye/internal/config"
	"github.com/iconidentify/bskye/internal/media"
	"github.com/iconidentify/bskye/internal/render"
	"github.com/iconidentify/bskye/internal/service"
	"github.com/iconidentify/bskye/pkg/bluesky"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bskye %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	// Setup logger
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting bskye",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logger.Warn("invalid log level, using info", "log_level", cfg.Server.LogLevel)
	}

	// Error reporting
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "bskye@" + Version,
		}); err != nil {
			logger.Error("failed to initialize sentry", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(5 * time.Second)
	}

	// Initialize dependencies
	store, err := cache.New(cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to initialize cache", "backend", cfg.Cache.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := bluesky.NewClient(bluesky.ClientConfig{
		AppViewURL: cfg.Bluesky.AppViewURL,
		Timeout:    cfg.Bluesky.Timeout,
		UserAgent:  cfg.Bluesky.UserAgent,
	}, logger)

	site := render.Site{
		Name:        cfg.Site.Name,
		ThemeColor:  cfg.Site.ThemeColor,
		WebURL:      cfg.Bluesky.WebURL,
		ProviderURL: cfg.Site.ProviderURL,
	}

	// Initialize services
	embedSvc := service.NewEmbedService(
		client,
		media.NewClassifier(cfg.Bluesky.BlobEndpoint, nil),
		site,
		logger,
	)

	// Initialize handlers
	embedHandler := handler.NewEmbedHandler(embedSvc, cfg.Site.DirectHostPrefix, logger)
	oembedHandler := handler.NewOEmbedHandler(site)
	healthHandler := handler.NewHealthHandler(store)

	// Setup router
	router := api.NewRouter(
		embedHandler,
		oembedHandler,
		healthHandler,
		api.RouterOptions{
			RepositoryURL:         cfg.Site.RepositoryURL,
			WebURL:                cfg.Bluesky.WebURL,
			DirectHostPrefix:      cfg.Site.DirectHostPrefix,
			RedirectUnknownAgents: cfg.Server.RedirectUnknownAgents,
			Cache:                 store,
			CacheTTL:              cfg.Cache.TTL,
			RequestTimeout:        cfg.Server.WriteTimeout,
			Logger:                logger,
		},
	)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			"addr", srv.Addr,
			"cache", cfg.Cache.Backend,
			"appview", cfg.Bluesky.AppViewURL,
		)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
