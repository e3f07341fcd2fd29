package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/config"
	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/handler"
	"github.com/zaeom/storefront-bfa-go/internal/infra/cache"
	"github.com/zaeom/storefront-bfa-go/internal/infra/imaging"
	"github.com/zaeom/storefront-bfa-go/internal/infra/objectstore"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/infra/resilience"
	"github.com/zaeom/storefront-bfa-go/internal/infra/supabase"
	"github.com/zaeom/storefront-bfa-go/internal/port"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "reading .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("supabase_url", cfg.SupabaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("redis_cache", cfg.UseRedisCache()),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("invite_mode", cfg.InviteMode),
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "storefront-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	categoryCache, settingsCache, closeCache := buildCaches(ctx, cfg, logger)
	defer closeCache()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase", supabase.BreakerSuccess)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	storage, err := buildStorage(ctx, cfg, supabaseClient, logger)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	var inviter port.Inviter
	switch cfg.InviteMode {
	case config.InviteAdmin:
		inviter = supabase.NewAdminInviter(supabaseClient, cfg.SiteURL)
	default:
		inviter = supabase.NewFunctionInviter(supabaseClient, cfg.InviteFunction)
	}

	// --- Services ---
	catalogSvc := service.NewCatalogService(supabaseClient, supabaseClient, supabaseClient, categoryCache, metrics, logger)
	settingsSvc := service.NewSettingsService(supabaseClient, settingsCache, metrics, logger)
	productSvc := service.NewProductService(supabaseClient, metrics, logger)
	categorySvc := service.NewCategoryService(supabaseClient, catalogSvc, metrics, logger)
	adSvc := service.NewAdService(supabaseClient, metrics, logger)
	roleSvc := service.NewRoleService(supabaseClient, inviter, cfg.MasterEmail, metrics, logger)
	mediaSvc := service.NewMediaService(storage, imaging.NewCompressor(imaging.DefaultOptions()), cfg.MaxConcurrency, metrics, logger)
	authSvc := service.NewAuthService(supabaseClient, supabaseClient, cfg.SupabaseJWTSecret, cfg.MasterEmail, cfg.SiteURL, metrics, logger)
	dashboardSvc := service.NewDashboardService(productSvc, categorySvc, adSvc, roleSvc, settingsSvc, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Catalog:    catalogSvc,
		Settings:   settingsSvc,
		Auth:       authSvc,
		Products:   productSvc,
		Categories: categorySvc,
		Ads:        adSvc,
		Roles:      roleSvc,
		Media:      mediaSvc,
		Dashboard:  dashboardSvc,
	}, handler.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Backend:        supabaseClient,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second, // multipart uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// buildCaches returns Redis-backed caches when REDIS_URL is set and
// in-process caches otherwise. A Redis that does not answer at boot falls
// back to in-process caching.
func buildCaches(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Cache[[]domain.Category], port.Cache[*domain.SiteSettings], func()) {
	if cfg.UseRedisCache() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("using redis cache")
			return cache.NewRedis[[]domain.Category](client, cfg.CachePrefix, cfg.CacheTTL, logger),
				cache.NewRedis[*domain.SiteSettings](client, cfg.CachePrefix, cfg.CacheTTL, logger),
				func() { client.Close() }
		}
		logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
	}

	categories := cache.New[[]domain.Category](cfg.CacheTTL)
	settings := cache.New[*domain.SiteSettings](cfg.CacheTTL)
	return categories, settings, func() {
		categories.Close()
		settings.Close()
	}
}

func buildStorage(ctx context.Context, cfg *config.Config, client *supabase.Client, logger *zap.Logger) (port.ObjectStorage, error) {
	if cfg.StorageBackend != config.StorageS3 {
		return supabase.NewStorage(client, cfg.StorageBucket), nil
	}

	publicBase := cfg.S3PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("%s/storage/v1/object/public/%s", cfg.SupabaseURL, cfg.StorageBucket)
	}
	logger.Info("using S3 object storage", zap.String("endpoint", cfg.S3Endpoint))
	return objectstore.NewS3(ctx, objectstore.Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Bucket:          cfg.StorageBucket,
		PublicBaseURL:   publicBase,
	}, logger)
}
