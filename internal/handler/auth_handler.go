package handler

import (
	"net/http"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Session
// ============================================================

// POST /v1/auth/login
func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.SignInRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		session, err := authSvc.SignIn(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// POST /v1/auth/logout
func authLogoutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := authSvc.SignOut(ctx, ActorFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "signed out"})
	}
}

// GET /v1/auth/session
func authSessionHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/auth/session")
		defer span.End()

		info, err := authSvc.Session(ctx, ActorFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// POST /v1/auth/password/reset
func authPasswordResetHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/password/reset")
		defer span.End()

		var req domain.PasswordResetRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := authSvc.RequestPasswordReset(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, domain.SuccessResponse{
			Message: "if the address is registered, a recovery link is on its way",
		})
	}
}

// PUT /v1/auth/password
func authUpdatePasswordHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/auth/password")
		defer span.End()

		var req domain.PasswordUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := authSvc.UpdatePassword(ctx, ActorFromContext(ctx), &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "password updated"})
	}
}
