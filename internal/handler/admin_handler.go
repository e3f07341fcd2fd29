package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Console: dashboard, icons, operations snapshot
// ============================================================

// GET /v1/admin/dashboard
func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/dashboard")
		defer span.End()

		dashboard, err := svc.Load(ctx, ActorFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}

type iconListResponse struct {
	Set      domain.IconSet `json:"set"`
	Icons    []domain.Icon  `json:"icons"`
	Fallback domain.Icon    `json:"fallback"`
}

// GET /v1/admin/icons?set=category|feature&q=
func listIconsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set := domain.IconSet(strings.ToLower(r.URL.Query().Get("set")))
		fallback := domain.DefaultCategoryIcon
		switch set {
		case "", domain.IconSetCategory:
			set = domain.IconSetCategory
		case domain.IconSetFeature:
			fallback = domain.DefaultFeatureIcon
		default:
			writeError(w, http.StatusBadRequest, "set must be category or feature")
			return
		}

		writeJSON(w, http.StatusOK, iconListResponse{
			Set:      set,
			Icons:    domain.SearchIcons(set, r.URL.Query().Get("q")),
			Fallback: fallback,
		})
	}
}

// GET /v1/admin/metrics
func operationsSnapshotHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ActorFromContext(r.Context()).Role.IsAdminTier() {
			writeError(w, http.StatusForbidden, "forbidden: view operations snapshot")
			return
		}
		writeJSON(w, http.StatusOK, metrics.GetOperationsSnapshot())
	}
}

// ============================================================
// Users: /v1/admin/users
// ============================================================

func listUsersHandler(svc *service.RoleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/users")
		defer span.End()

		profiles, err := svc.Users(ctx, ActorFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": profiles, "total": len(profiles)})
	}
}

func promoteUserHandler(svc *service.RoleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users/{id}/promote")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("target.id", id))

		profile, err := svc.Promote(ctx, ActorFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func revokeUserHandler(svc *service.RoleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users/{id}/revoke")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("target.id", id))

		profile, err := svc.Revoke(ctx, ActorFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func inviteUserHandler(svc *service.RoleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users/invite")
		defer span.End()

		var req domain.InviteRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Invite(ctx, ActorFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// ============================================================
// Settings: PUT /v1/admin/settings
// ============================================================

func updateSettingsHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/settings")
		defer span.End()

		var in domain.SettingsInput
		if !decodeJSON(w, r, &in) {
			return
		}

		settings, err := svc.Update(ctx, ActorFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// ============================================================
// Uploads: POST /v1/admin/uploads/{kind} (multipart "file")
// ============================================================

func uploadHandler(svc *service.MediaService, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/uploads/{kind}")
		defer span.End()

		kind := service.UploadKind(chi.URLParam(r, "kind"))
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()
		span.SetAttributes(attribute.Int64("upload.size", header.Size))

		res, err := svc.Upload(ctx, ActorFromContext(ctx), kind, header.Filename, file)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}
