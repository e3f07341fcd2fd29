package domain

import (
	"fmt"
	"strings"
)

// Role is a tier on the permission ladder. Ordering is meaningful:
// visitor < seller < admin < master.
type Role uint8

const (
	RoleVisitor Role = iota
	RoleSeller
	RoleAdmin
	RoleMaster
)

var roleNames = [...]string{
	RoleVisitor: "visitor",
	RoleSeller:  "seller",
	RoleAdmin:   "admin",
	RoleMaster:  "master",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the four known tiers.
func (r Role) Valid() bool {
	return int(r) < len(roleNames)
}

// ParseRole maps a persisted role name to its tier.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return 0, &ErrValidation{Field: "role", Message: fmt.Sprintf("unknown role %q", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input decodes to visitor,
// which is what the signup trigger writes for users without an assigned tier.
func (r *Role) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = RoleVisitor
		return nil
	}
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// IsAdminTier reports whether the role may use the back office.
func (r Role) IsAdminTier() bool {
	return r == RoleAdmin || r == RoleMaster
}

// Actor is the authenticated caller of an operation. It is built once per request
// by the auth middleware and passed explicitly into services.
type Actor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	// Token is the caller's access token, forwarded to the backend so that
	// row-level security evaluates against the real user.
	Token string `json:"-"`
}

// IsSelf reports whether userID identifies the actor.
func (a Actor) IsSelf(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}

// EffectiveRole resolves the tier of a signed-in user. The configured master email
// is always master, regardless of what its profile row says.
func EffectiveRole(email, masterEmail string, profileRole Role) Role {
	if masterEmail != "" && strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(masterEmail)) {
		return RoleMaster
	}
	return profileRole
}
