package service_test

import (
	"context"
	"testing"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rolesFixture() *fakeProfileStore {
	return newFakeProfileStore(
		domain.Profile{ID: "u-master", Email: masterEmail, Role: domain.RoleVisitor},
		domain.Profile{ID: "u-admin", Email: "admin@shop.io", Role: domain.RoleAdmin},
		domain.Profile{ID: "u-admin2", Email: "admin2@shop.io", Role: domain.RoleAdmin},
		domain.Profile{ID: "u-seller", Email: "seller@shop.io", Role: domain.RoleSeller},
		domain.Profile{ID: "u-visitor", Email: "visitor@shop.io", Role: domain.RoleVisitor},
	)
}

func newRoles(profiles *fakeProfileStore, inviter *fakeInviter) *service.RoleService {
	metrics, logger := testDeps()
	return service.NewRoleService(profiles, inviter, masterEmail, metrics, logger)
}

func TestRoleService_PromoteWalksTheLadder(t *testing.T) {
	profiles := rolesFixture()
	svc := newRoles(profiles, &fakeInviter{})
	ctx := context.Background()

	p, err := svc.Promote(ctx, admin, "u-visitor")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, p.Role)
	assert.Equal(t, domain.RoleSeller, profiles.role("u-visitor"))

	p, err = svc.Promote(ctx, admin, "u-visitor")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, p.Role)

	p, err = svc.Promote(ctx, master, "u-visitor")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, p.Role, "master cycles admin back to seller")
}

func TestRoleService_AdminCannotDemoteAdmin(t *testing.T) {
	profiles := rolesFixture()
	svc := newRoles(profiles, &fakeInviter{})

	_, err := svc.Promote(context.Background(), admin, "u-admin2")

	var forbidden *domain.ErrForbidden
	require.ErrorAs(t, err, &forbidden)
	assert.Contains(t, err.Error(), "insufficient privilege")
	assert.Equal(t, domain.RoleAdmin, profiles.role("u-admin2"))
	assert.Empty(t, profiles.updates)
}

func TestRoleService_SelfChangeRejectedWithoutLookup(t *testing.T) {
	profiles := rolesFixture()
	svc := newRoles(profiles, &fakeInviter{})
	ctx := context.Background()

	_, err := svc.Promote(ctx, admin, admin.UserID)
	assert.Error(t, err)
	_, err = svc.Revoke(ctx, master, master.UserID)
	assert.Error(t, err)

	assert.Zero(t, profiles.gets)
	assert.Empty(t, profiles.updates)
}

func TestRoleService_MasterEmailIsImmutable(t *testing.T) {
	profiles := rolesFixture()
	svc := newRoles(profiles, &fakeInviter{})
	other := domain.Actor{UserID: "u-other-master", Role: domain.RoleMaster}

	_, err := svc.Promote(context.Background(), other, "u-master")
	assert.Error(t, err, "the stored profile says visitor but the email makes it master")

	_, err = svc.Revoke(context.Background(), other, "u-master")
	assert.Error(t, err)
	assert.Empty(t, profiles.updates)
}

func TestRoleService_Revoke(t *testing.T) {
	profiles := rolesFixture()
	svc := newRoles(profiles, &fakeInviter{})
	ctx := context.Background()

	var forbidden *domain.ErrForbidden
	_, err := svc.Revoke(ctx, admin, "u-seller")
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, domain.RoleSeller, profiles.role("u-seller"))

	p, err := svc.Revoke(ctx, master, "u-admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVisitor, p.Role)
	assert.Equal(t, domain.RoleVisitor, profiles.role("u-admin"))
}

func TestRoleService_NonAdminRejectedWithoutLookup(t *testing.T) {
	profiles := rolesFixture()
	svc := newRoles(profiles, &fakeInviter{})

	_, err := svc.Promote(context.Background(), seller, "u-visitor")

	var forbidden *domain.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
	assert.Zero(t, profiles.gets)
}

func TestRoleService_PersistFailureLeavesRole(t *testing.T) {
	profiles := rolesFixture()
	profiles.failUpdate = true
	svc := newRoles(profiles, &fakeInviter{})

	_, err := svc.Promote(context.Background(), master, "u-seller")

	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.Equal(t, domain.RoleSeller, profiles.role("u-seller"))
}

func TestRoleService_UnmatchedUpdateIsNotFound(t *testing.T) {
	profiles := rolesFixture()
	profiles.hidden = map[string]bool{"u-visitor": true}
	svc := newRoles(profiles, &fakeInviter{})

	p, err := svc.Promote(context.Background(), admin, "u-visitor")

	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Nil(t, p)
	assert.Equal(t, domain.RoleVisitor, profiles.role("u-visitor"))
}

func TestRoleService_UsersReportEffectiveRole(t *testing.T) {
	svc := newRoles(rolesFixture(), &fakeInviter{})

	users, err := svc.Users(context.Background(), admin)
	require.NoError(t, err)

	byID := map[string]domain.Role{}
	for _, u := range users {
		byID[u.ID] = u.Role
	}
	assert.Equal(t, domain.RoleMaster, byID["u-master"])
	assert.Equal(t, domain.RoleSeller, byID["u-seller"])

	_, err = svc.Users(context.Background(), seller)
	assert.Error(t, err)
}

func TestRoleService_Invite(t *testing.T) {
	inviter := &fakeInviter{}
	svc := newRoles(rolesFixture(), inviter)
	ctx := context.Background()

	res, err := svc.Invite(ctx, admin, &domain.InviteRequest{
		Email: "  New@Shop.io ", FullName: " New Seller ", Role: domain.RoleSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, "invitation sent to new@shop.io", res.Message)
	assert.Equal(t, admin.Token, inviter.token, "the caller's session goes to the invite function")
	assert.Equal(t, "new@shop.io", inviter.req.Email)
	assert.Equal(t, "New Seller", inviter.req.FullName)

	var forbidden *domain.ErrForbidden
	_, err = svc.Invite(ctx, admin, &domain.InviteRequest{Email: "a@shop.io", FullName: "A", Role: domain.RoleAdmin})
	assert.ErrorAs(t, err, &forbidden, "only master appoints admins")

	_, err = svc.Invite(ctx, master, &domain.InviteRequest{Email: "a@shop.io", FullName: "A", Role: domain.RoleAdmin})
	assert.NoError(t, err)

	var validation *domain.ErrValidation
	_, err = svc.Invite(ctx, master, &domain.InviteRequest{Email: "not-an-email", FullName: "A", Role: domain.RoleSeller})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "email", validation.Field)

	assert.Equal(t, 2, inviter.calls)
}
