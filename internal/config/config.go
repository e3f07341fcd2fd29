package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for uploaded images.
const (
	StorageSupabase = "supabase"
	StorageS3       = "s3"
)

// Invite adapters.
const (
	InviteFunction = "function"
	InviteAdmin    = "admin"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port        int      `env:"PORT" envDefault:"8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	SiteURL     string   `env:"SITE_URL" envDefault:"http://localhost:5173"`

	// HTTP client
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// Resilience
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"2"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"100ms"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" envDefault:"4"` // concurrent image compressions

	// Cache
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RedisURL    string        `env:"REDIS_URL"`
	CachePrefix string        `env:"CACHE_PREFIX" envDefault:"storefront:"`

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Supabase
	SupabaseURL        string `env:"SUPABASE_URL,required"`
	SupabaseAnonKey    string `env:"SUPABASE_ANON_KEY,required"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseJWTSecret  string `env:"SUPABASE_JWT_SECRET,required"`

	// Access
	MasterEmail    string `env:"MASTER_EMAIL,required"`
	InviteMode     string `env:"INVITE_MODE" envDefault:"function"`
	InviteFunction string `env:"INVITE_FUNCTION" envDefault:"invite-user"`

	// Login throttling
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`

	// Uploads
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"supabase"`
	StorageBucket  string `env:"STORAGE_BUCKET" envDefault:"products"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"15728640"`

	// S3-compatible endpoint, used when StorageBackend is "s3"
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.SupabaseURL = strings.TrimRight(c.SupabaseURL, "/")
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")

	var errs []error
	switch c.StorageBackend {
	case StorageSupabase:
	case StorageS3:
		if c.S3Endpoint == "" || c.S3AccessKeyID == "" || c.S3SecretAccessKey == "" {
			errs = append(errs, errors.New("STORAGE_BACKEND=s3 requires S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageSupabase, StorageS3, c.StorageBackend))
	}

	switch c.InviteMode {
	case InviteFunction:
	case InviteAdmin:
		if c.SupabaseServiceKey == "" {
			errs = append(errs, errors.New("INVITE_MODE=admin requires SUPABASE_SERVICE_ROLE_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("INVITE_MODE must be %q or %q, got %q", InviteFunction, InviteAdmin, c.InviteMode))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}
