package service

import (
	"context"
	"errors"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService proxies the hosted auth service and resolves callers into
// domain.Actor values. Sessions are issued and revoked by the backend; this
// service never stores credentials.
type AuthService struct {
	gateway     port.AuthGateway
	profiles    port.ProfileStore
	jwtSecret   []byte
	masterEmail string
	siteURL     string
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewAuthService creates the auth service. jwtSecret is the project's JWT
// secret used to verify access tokens locally.
func NewAuthService(gateway port.AuthGateway, profiles port.ProfileStore, jwtSecret, masterEmail, siteURL string, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		gateway:     gateway,
		profiles:    profiles,
		jwtSecret:   []byte(jwtSecret),
		masterEmail: masterEmail,
		siteURL:     strings.TrimRight(siteURL, "/"),
		metrics:     metrics,
		logger:      logger,
	}
}

// ============================================================
// Sign in / out: POST /v1/auth/login, /v1/auth/logout
// ============================================================

func (s *AuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.SignIn")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	session, err := s.gateway.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		var unauthorized *domain.ErrUnauthorized
		if errors.As(err, &unauthorized) {
			s.logger.Warn("auth: sign-in rejected", zap.String("email", req.Email))
			return nil, &domain.ErrUnauthorized{Message: "invalid email or password"}
		}
		s.metrics.IncrBackendError("auth")
		return nil, err
	}

	s.logger.Info("auth: signed in", zap.String("user_id", session.User.ID))
	return session, nil
}

func (s *AuthService) SignOut(ctx context.Context, actor domain.Actor) error {
	ctx, span := authTracer.Start(ctx, "AuthService.SignOut")
	defer span.End()

	if err := s.gateway.SignOut(ctx, actor.Token); err != nil {
		s.metrics.IncrBackendError("auth")
		return err
	}
	s.logger.Info("auth: signed out", zap.String("user_id", actor.UserID))
	return nil
}

// ============================================================
// Session: GET /v1/auth/session
// ============================================================

// Session describes the caller as the auth service sees them, with their
// profile and effective tier.
func (s *AuthService) Session(ctx context.Context, actor domain.Actor) (*domain.SessionInfo, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Session")
	defer span.End()

	user, err := s.gateway.GetUser(ctx, actor.Token)
	if err != nil {
		return nil, err
	}
	profile, err := s.lookupProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	stored := domain.RoleVisitor
	if profile != nil {
		stored = profile.Role
	}
	return &domain.SessionInfo{
		User:    *user,
		Profile: profile,
		Role:    domain.EffectiveRole(user.Email, s.masterEmail, stored),
	}, nil
}

// ============================================================
// Passwords: POST /v1/auth/password/reset, PUT /v1/auth/password
// ============================================================

// RequestPasswordReset emails a recovery link that lands on the console.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.RequestPasswordReset")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return err
	}

	if err := s.gateway.ResetPasswordForEmail(ctx, req.Email, s.siteURL+"/admin"); err != nil {
		s.metrics.IncrBackendError("auth")
		s.logger.Error("auth: password reset failed", zap.Error(err))
		return err
	}
	return nil
}

// UpdatePassword sets a new password for the signed-in caller.
func (s *AuthService) UpdatePassword(ctx context.Context, actor domain.Actor, req *domain.PasswordUpdateRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdatePassword")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return err
	}
	if err := s.gateway.UpdatePassword(ctx, actor.Token, req.Password); err != nil {
		s.metrics.IncrBackendError("auth")
		return err
	}
	s.logger.Info("auth: password updated", zap.String("user_id", actor.UserID))
	return nil
}

// ============================================================
// Authenticate: used by middleware
// ============================================================

// Authenticate verifies an access token and builds the request's Actor.
// A user without a profile row is a visitor.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		return domain.Actor{}, err
	}
	span.SetAttributes(attribute.String("user.id", claims.Subject))

	ctx = port.WithAccessToken(ctx, token)
	profile, err := s.lookupProfile(ctx, claims.Subject)
	if err != nil {
		return domain.Actor{}, err
	}

	stored := domain.RoleVisitor
	if profile != nil {
		stored = profile.Role
	}
	return domain.Actor{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   domain.EffectiveRole(claims.Email, s.masterEmail, stored),
		Token:  token,
	}, nil
}

func (s *AuthService) lookupProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		s.metrics.IncrBackendError("profiles")
		return nil, err
	}
	return profile, nil
}
