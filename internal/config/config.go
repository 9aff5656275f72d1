package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Bluesky BlueskyConfig `yaml:"bluesky"`
	Site    SiteConfig    `yaml:"site"`
	Cache   CacheConfig   `yaml:"cache"`
	Sentry  SentryConfig  `yaml:"sentry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"SERVER_PORT" default:"8787"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	// RedirectUnknownAgents sends requests from unrecognized user agents to
	// the Bluesky web app instead of rendering a preview.
	RedirectUnknownAgents bool   `yaml:"redirect_unknown_agents" envconfig:"REDIRECT_UNKNOWN_AGENTS" default:"true"`
	LogLevel              string `yaml:"log_level" envconfig:"LOG_LEVEL" default:"info"`
}

// BlueskyConfig holds upstream AppView configuration.
type BlueskyConfig struct {
	AppViewURL   string        `yaml:"appview_url" envconfig:"BLUESKY_APPVIEW_URL" default:"https://public.api.bsky.app"`
	BlobEndpoint string        `yaml:"blob_endpoint" envconfig:"BLUESKY_BLOB_ENDPOINT" default:"https://bsky.social/xrpc/com.atproto.sync.getBlob"`
	WebURL       string        `yaml:"web_url" envconfig:"BLUESKY_WEB_URL" default:"https://bsky.app"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"BLUESKY_TIMEOUT" default:"10s"`
	UserAgent    string        `yaml:"user_agent" envconfig:"BLUESKY_USER_AGENT" default:"bskye/1.0 (+https://github.com/FerroEduardo/bskye)"`
}

// SiteConfig holds branding for rendered previews.
type SiteConfig struct {
	Name          string `yaml:"name" envconfig:"SITE_NAME" default:"bskye"`
	ThemeColor    string `yaml:"theme_color" envconfig:"SITE_THEME_COLOR" default:"#0a7aff"`
	ProviderURL   string `yaml:"provider_url" envconfig:"SITE_PROVIDER_URL" default:"https://bskye.app/"`
	RepositoryURL string `yaml:"repository_url" envconfig:"SITE_REPOSITORY_URL" default:"https://github.com/FerroEduardo/bskye"`
	// DirectHostPrefix marks hosts that answer with a redirect to the raw media.
	DirectHostPrefix string `yaml:"direct_host_prefix" envconfig:"SITE_DIRECT_HOST_PREFIX" default:"d."`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Backend    string        `yaml:"backend" envconfig:"CACHE_BACKEND" default:"memory"`
	RedisURL   string        `yaml:"redis_url" envconfig:"REDIS_URL"`
	KeyPrefix  string        `yaml:"key_prefix" envconfig:"CACHE_KEY_PREFIX" default:"bskye:"`
	TTL        time.Duration `yaml:"ttl" envconfig:"CACHE_TTL" default:"1h"`
	MaxEntries int           `yaml:"max_entries" envconfig:"CACHE_MAX_ENTRIES" default:"10000"`
}

// SentryConfig holds error reporting configuration. An empty DSN disables reporting.
type SentryConfig struct {
	DSN         string `yaml:"dsn" envconfig:"SENTRY_DSN"`
	Environment string `yaml:"environment" envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from defaults, the YAML file and environment
// variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	// Defaults plus environment
	fromEnv := &Config{}
	if err := envconfig.Process("", fromEnv); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg := *fromEnv

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		// Variables that are actually set override the file
		overlayEnv(reflect.ValueOf(&cfg).Elem(), reflect.ValueOf(fromEnv).Elem(), "")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// overlayEnv copies from src into dst every field whose environment variable
// is set. Keys are looked up the way envconfig does: the prefixed key first,
// then the bare envconfig tag.
func overlayEnv(dst, src reflect.Value, prefix string) {
	t := dst.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Struct {
			overlayEnv(dst.Field(i), src.Field(i), envKey(prefix, strings.ToUpper(f.Name)))
			continue
		}

		alt := f.Tag.Get("envconfig")
		if alt == "" {
			continue
		}
		_, set := os.LookupEnv(envKey(prefix, alt))
		if !set {
			_, set = os.LookupEnv(alt)
		}
		if set {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

func envKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	for name, raw := range map[string]string{
		"BLUESKY_APPVIEW_URL":   c.Bluesky.AppViewURL,
		"BLUESKY_BLOB_ENDPOINT": c.Bluesky.BlobEndpoint,
		"BLUESKY_WEB_URL":       c.Bluesky.WebURL,
	} {
		if err := validateURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Site.Name == "" {
		return fmt.Errorf("SITE_NAME is required")
	}

	return c.Cache.Validate()
}

// Validate checks the cache backend and its settings.
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case CacheBackendNone:
		return nil
	case CacheBackendMemory:
		if c.MaxEntries <= 0 {
			return fmt.Errorf("CACHE_MAX_ENTRIES must be positive for the memory cache")
		}
	case CacheBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of memory, redis, none; got %q", c.Backend)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL, got %q", raw)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
