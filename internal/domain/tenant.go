package domain

import "encoding/json"

// TenantStatus is the lifecycle status of a tenant. Only active tenants resolve.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant maps the tenants table / directory record.
type Tenant struct {
	ID       string          `db:"id" json:"id"`     // UUID
	Name     string          `db:"name" json:"name"` // display name
	Slug     string          `db:"slug" json:"slug"`
	Status   TenantStatus    `db:"status" json:"status"`
	Settings json.RawMessage `db:"settings" json:"settings,omitempty"` // JSONB, open map
}

// IsActive reports whether the tenant may be resolved.
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == TenantStatusActive
}
