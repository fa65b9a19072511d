package tenancy

import "via-fatto-painel/internal/domain"

// Binding is the session-facing view of the active tenant: the last Result
// projected together with the current user's role.
type Binding struct {
	Tenant      *domain.Tenant `json:"tenant"`
	Domain      *domain.Domain `json:"domain"`
	Error       ErrorCode      `json:"error"`
	Reason      Reason         `json:"reason"`
	Resolved    bool           `json:"resolved"`
	Role        domain.Role    `json:"role"`
	RoleLoading bool           `json:"role_loading"`
	UserID      string         `json:"user_id,omitempty"`
}

// NewBinding projects res into a binding with no role yet.
func NewBinding(res Result) Binding {
	return Binding{
		Tenant:   res.Tenant,
		Domain:   res.Domain,
		Error:    res.Error,
		Reason:   res.Reason,
		Resolved: res.Resolved(),
	}
}

// WithRole returns a copy of b carrying userID's role.
func (b Binding) WithRole(userID string, role domain.Role) Binding {
	b.UserID = userID
	b.Role = role
	b.RoleLoading = false
	return b
}

// TenantID returns the bound tenant id or "".
func (b Binding) TenantID() string {
	if b.Tenant == nil {
		return ""
	}
	return b.Tenant.ID
}

func (b Binding) IsMember() bool       { return b.Resolved && b.Role.IsMember() }
func (b Binding) IsOwnerOrAdmin() bool { return b.Resolved && b.Role.IsOwnerOrAdmin() }
func (b Binding) CanManageUsers() bool { return b.Resolved && b.Role.CanManageUsers() }
