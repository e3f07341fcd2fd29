package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.uber.org/zap"
)

type contextKey string

const actorKey contextKey = "actor"

// Authenticator turns a bearer token into the calling Actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

// AuthMiddleware validates Bearer tokens and injects the Actor into context.
// The raw token is attached too so backend calls run as the caller.
func AuthMiddleware(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("auth: missing token", zap.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "missing access token")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			token = strings.TrimSpace(token)

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("auth: rejected token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			ctx = port.WithAccessToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated caller. The zero Actor is a
// visitor, which every protected operation rejects.
func ActorFromContext(ctx context.Context) domain.Actor {
	v, _ := ctx.Value(actorKey).(domain.Actor)
	return v
}
