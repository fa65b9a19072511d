package domain

import (
	"encoding/json"
	"strings"
)

// Role is a user's membership role within one tenant.
type Role string

const (
	RoleNone  Role = ""
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// ParseRole casts a stored role string to the closed enum.
// Unknown values map to RoleNone.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner
	case RoleAdmin:
		return RoleAdmin
	case RoleAgent:
		return RoleAgent
	default:
		return RoleNone
	}
}

// IsMember reports whether the user has any role in the tenant.
func (r Role) IsMember() bool {
	return r != RoleNone
}

// IsOwnerOrAdmin reports whether r is owner or admin.
func (r Role) IsOwnerOrAdmin() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanManageUsers is granted to owners and admins.
func (r Role) CanManageUsers() bool {
	return r.IsOwnerOrAdmin()
}

// MarshalJSON renders RoleNone as null.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}
