package handler

import (
	"net/http"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services are the application services the router exposes. A nil Auth
// disables the auth and admin surfaces.
type Services struct {
	Catalog    *service.CatalogService
	Settings   *service.SettingsService
	Auth       *service.AuthService
	Products   *service.ProductService
	Categories *service.CategoryService
	Ads        *service.AdService
	Roles      *service.RoleService
	Media      *service.MediaService
	Dashboard  *service.DashboardService
}

// Options tune the HTTP surface.
type Options struct {
	AllowedOrigins []string
	AuthRateLimit  int
	AuthRateWindow time.Duration
	MaxUploadBytes int64
	// Backend is probed by /healthz and /readyz; nil skips the probe.
	Backend Pinger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(observability.RequestMetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(opts.Backend, logger))
	r.Get("/readyz", readyzHandler(opts.Backend))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Public storefront
		// =============================================
		r.Get("/catalog/products", listProductsHandler(svc.Catalog, logger))
		r.Get("/catalog/products/{id}", getProductHandler(svc.Catalog, logger))
		r.Get("/catalog/categories", listCategoriesHandler(svc.Catalog, logger))
		r.Get("/catalog/ads", listActiveAdsHandler(svc.Catalog, logger))
		r.Get("/settings", getSettingsHandler(svc.Settings, logger))

		if svc.Auth == nil {
			unavailable := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
			})
			r.Handle("/auth/*", unavailable)
			r.Handle("/admin/*", unavailable)
			return
		}
		requireSession := AuthMiddleware(svc.Auth, logger)

		// =============================================
		// Session
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.AuthRateLimit > 0 {
					r.Use(httprate.LimitByIP(opts.AuthRateLimit, opts.AuthRateWindow))
				}
				r.Post("/login", authLoginHandler(svc.Auth, logger))
				r.Post("/password/reset", authPasswordResetHandler(svc.Auth, logger))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/logout", authLogoutHandler(svc.Auth, logger))
				r.Get("/session", authSessionHandler(svc.Auth, logger))
				r.Put("/password", authUpdatePasswordHandler(svc.Auth, logger))
			})
		})

		// =============================================
		// Back office
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/dashboard", dashboardHandler(svc.Dashboard, logger))
			r.Get("/icons", listIconsHandler())
			r.Get("/metrics", operationsSnapshotHandler(metrics))

			r.Get("/products", adminListProductsHandler(svc.Products, logger))
			r.Post("/products", saveProductHandler(svc.Products, logger))
			r.Put("/products/{id}", saveProductHandler(svc.Products, logger))
			r.Delete("/products/{id}", deleteProductHandler(svc.Products, logger))
			r.Post("/products/bulk", bulkProductsHandler(svc.Products, logger))

			r.Get("/categories", adminCategoryTreeHandler(svc.Categories, logger))
			r.Post("/categories", saveCategoryHandler(svc.Categories, logger))
			r.Put("/categories/{id}", saveCategoryHandler(svc.Categories, logger))
			r.Delete("/categories/{id}", deleteCategoryHandler(svc.Categories, logger))

			r.Get("/ads", adminListAdsHandler(svc.Ads, logger))
			r.Post("/ads", saveAdHandler(svc.Ads, logger))
			r.Put("/ads/{id}", saveAdHandler(svc.Ads, logger))
			r.Delete("/ads/{id}", deleteAdHandler(svc.Ads, logger))

			r.Get("/users", listUsersHandler(svc.Roles, logger))
			r.Post("/users/invite", inviteUserHandler(svc.Roles, logger))
			r.Post("/users/{id}/promote", promoteUserHandler(svc.Roles, logger))
			r.Post("/users/{id}/revoke", revokeUserHandler(svc.Roles, logger))

			r.Put("/settings", updateSettingsHandler(svc.Settings, logger))

			r.Post("/uploads/{kind}", uploadHandler(svc.Media, opts.MaxUploadBytes, logger))
		})
	})

	return r
}
