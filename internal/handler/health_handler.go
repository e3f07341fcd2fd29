package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// Pinger checks that a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// ============================================================
// GET /healthz
// ============================================================

func healthzHandler(backend Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "storefront-bfa", Status: "healthy", LastChecked: now},
		}

		if backend != nil {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			start := time.Now()
			err := backend.Ping(ctx)
			cancel()

			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("healthz: backend probe failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

// ============================================================
// GET /readyz
// ============================================================

func readyzHandler(backend Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if backend != nil {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			defer cancel()
			if err := backend.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
