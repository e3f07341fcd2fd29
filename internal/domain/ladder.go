package domain

// Permission ladder: the only way a profile's role changes after signup.
//
// Promote has no explicit target; the next role is inferred from the target's
// current role and the actor's tier through ladderTable. Revoke always lands on
// visitor. Neither ever produces master.

const (
	reasonInsufficientPrivilege = "insufficient privilege"
	reasonSelf                  = "an actor may not change their own role"
	reasonMasterImmutable       = "master role is immutable"
	reasonDemoteAdmin           = "insufficient privilege: only master may demote an admin"
	reasonRevokeMasterOnly      = "insufficient privilege: only master may revoke access"
)

type ladderKey struct {
	actor   Role
	current Role
}

// ladderStep is one cell of the transition table: either a next role or a
// rejection reason.
type ladderStep struct {
	next   Role
	reject string
}

var ladderTable = map[ladderKey]ladderStep{
	{RoleAdmin, RoleVisitor}: {next: RoleSeller},
	{RoleAdmin, RoleSeller}:  {next: RoleAdmin},
	{RoleAdmin, RoleAdmin}:   {reject: reasonDemoteAdmin},
	{RoleAdmin, RoleMaster}:  {reject: reasonMasterImmutable},

	{RoleMaster, RoleVisitor}: {next: RoleSeller},
	{RoleMaster, RoleSeller}:  {next: RoleAdmin},
	{RoleMaster, RoleAdmin}:   {next: RoleSeller},
	{RoleMaster, RoleMaster}:  {reject: reasonMasterImmutable},
}

// Promote returns the role the target moves to when actor cycles it.
func Promote(actor Role, actingOnSelf bool, current Role) (Role, error) {
	if actingOnSelf {
		return current, &ErrForbidden{Action: "change role", Reason: reasonSelf}
	}
	if !actor.IsAdminTier() {
		return current, &ErrForbidden{Action: "change role", Reason: reasonInsufficientPrivilege}
	}
	step, ok := ladderTable[ladderKey{actor: actor, current: current}]
	if !ok {
		return current, &ErrValidation{Field: "role", Message: "unknown current role " + current.String()}
	}
	if step.reject != "" {
		return current, &ErrForbidden{Action: "change role", Reason: step.reject}
	}
	return step.next, nil
}

// Revoke returns visitor when a master strips another user's access.
func Revoke(actor Role, actingOnSelf bool, current Role) (Role, error) {
	if actingOnSelf {
		return current, &ErrForbidden{Action: "revoke role", Reason: reasonSelf}
	}
	if actor != RoleMaster {
		return current, &ErrForbidden{Action: "revoke role", Reason: reasonRevokeMasterOnly}
	}
	if current == RoleMaster {
		return current, &ErrForbidden{Action: "revoke role", Reason: reasonMasterImmutable}
	}
	return RoleVisitor, nil
}

// CanInvite applies the console-side invite rules: admin tier may invite sellers,
// only master may invite admins. Other roles cannot be granted by invitation.
func CanInvite(actor Role, role Role) error {
	if !actor.IsAdminTier() {
		return &ErrForbidden{Action: "invite user", Reason: reasonInsufficientPrivilege}
	}
	switch role {
	case RoleSeller:
		return nil
	case RoleAdmin:
		if actor != RoleMaster {
			return &ErrForbidden{Action: "invite user", Reason: "insufficient privilege: only master may appoint admins"}
		}
		return nil
	default:
		return &ErrValidation{Field: "role", Message: "invites may only grant seller or admin"}
	}
}
