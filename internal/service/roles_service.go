package service

import (
	"context"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var rolesTracer = otel.Tracer("service/roles")

// RoleService applies the permission ladder to stored profiles and sends
// invitations.
type RoleService struct {
	profiles    port.ProfileStore
	inviter     port.Inviter
	masterEmail string
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewRoleService creates the role administration service.
func NewRoleService(profiles port.ProfileStore, inviter port.Inviter, masterEmail string, metrics *observability.Metrics, logger *zap.Logger) *RoleService {
	return &RoleService{
		profiles:    profiles,
		inviter:     inviter,
		masterEmail: masterEmail,
		metrics:     metrics,
		logger:      logger,
	}
}

// Users lists profiles newest first, each with its effective tier.
func (s *RoleService) Users(ctx context.Context, actor domain.Actor) ([]domain.Profile, error) {
	ctx, span := rolesTracer.Start(ctx, "RoleService.Users")
	defer span.End()

	if err := requireAdmin(actor, "list users"); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		s.metrics.IncrBackendError("profiles")
		return nil, err
	}
	for i := range profiles {
		profiles[i].Role = domain.EffectiveRole(profiles[i].Email, s.masterEmail, profiles[i].Role)
	}
	return profiles, nil
}

// Promote cycles the target one step along the ladder and returns the stored profile.
func (s *RoleService) Promote(ctx context.Context, actor domain.Actor, targetID string) (*domain.Profile, error) {
	ctx, span := rolesTracer.Start(ctx, "RoleService.Promote")
	defer span.End()
	span.SetAttributes(attribute.String("target.id", targetID))

	return s.change(ctx, actor, targetID, "promote", domain.Promote)
}

// Revoke returns the target to visitor. Master only.
func (s *RoleService) Revoke(ctx context.Context, actor domain.Actor, targetID string) (*domain.Profile, error) {
	ctx, span := rolesTracer.Start(ctx, "RoleService.Revoke")
	defer span.End()
	span.SetAttributes(attribute.String("target.id", targetID))

	return s.change(ctx, actor, targetID, "revoke", domain.Revoke)
}

type ladderFunc func(actor domain.Role, actingOnSelf bool, current domain.Role) (domain.Role, error)

func (s *RoleService) change(ctx context.Context, actor domain.Actor, targetID, op string, step ladderFunc) (*domain.Profile, error) {
	if targetID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	// Reject before touching the backend when the outcome cannot depend on the target.
	if actor.IsSelf(targetID) || !actor.Role.IsAdminTier() {
		_, err := step(actor.Role, actor.IsSelf(targetID), domain.RoleVisitor)
		s.reject(op, actor, targetID, err)
		return nil, err
	}

	target, err := s.profiles.GetProfile(ctx, targetID)
	if err != nil {
		s.metrics.IncrBackendError("profiles")
		return nil, err
	}
	current := domain.EffectiveRole(target.Email, s.masterEmail, target.Role)

	next, err := step(actor.Role, false, current)
	if err != nil {
		s.reject(op, actor, targetID, err)
		return nil, err
	}

	if err := s.profiles.UpdateRole(ctx, targetID, next); err != nil {
		s.metrics.IncrBackendError("profiles")
		s.logger.Error("roles: persisting role failed",
			zap.String("op", op),
			zap.String("target", targetID),
			zap.Stringer("from", current),
			zap.Stringer("to", next),
			zap.Error(err),
		)
		return nil, err
	}

	outcome := "promoted"
	if op == "revoke" {
		outcome = "revoked"
	}
	s.metrics.IncrRoleChange(outcome)
	s.logger.Info("roles: role changed",
		zap.String("op", op),
		zap.String("actor", actor.UserID),
		zap.String("target", targetID),
		zap.Stringer("from", current),
		zap.Stringer("to", next),
	)

	target.Role = next
	return target, nil
}

func (s *RoleService) reject(op string, actor domain.Actor, targetID string, err error) {
	s.metrics.IncrRoleChange("rejected")
	s.logger.Warn("roles: change rejected",
		zap.String("op", op),
		zap.String("actor", actor.UserID),
		zap.Stringer("actor_role", actor.Role),
		zap.String("target", targetID),
		zap.Error(err),
	)
}

// Invite asks the backend to email an invitation. Admin tier may invite
// sellers; only master may invite admins.
func (s *RoleService) Invite(ctx context.Context, actor domain.Actor, req *domain.InviteRequest) (*domain.InviteResult, error) {
	ctx, span := rolesTracer.Start(ctx, "RoleService.Invite")
	defer span.End()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if err := domain.CanInvite(actor.Role, req.Role); err != nil {
		s.logger.Warn("roles: invite rejected",
			zap.String("actor", actor.UserID),
			zap.Stringer("role", req.Role),
			zap.Error(err),
		)
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	inviteID := uuid.NewString()
	span.SetAttributes(attribute.String("invite.id", inviteID))
	s.logger.Info("roles: sending invite",
		zap.String("invite_id", inviteID),
		zap.String("actor", actor.UserID),
		zap.String("email", req.Email),
		zap.Stringer("role", req.Role),
	)

	res, err := s.inviter.Invite(ctx, actor.Token, req)
	if err != nil {
		s.metrics.IncrBackendError("invite")
		s.logger.Error("roles: invite failed", zap.String("invite_id", inviteID), zap.Error(err))
		return nil, err
	}
	if res.Message == "" {
		res.Message = "invitation sent to " + req.Email
	}
	return res, nil
}
