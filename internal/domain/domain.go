package domain

import "time"

// DomainType tells whether a hostname serves the public site or the admin panel.
type DomainType string

const (
	DomainTypePublic DomainType = "public"
	DomainTypeAdmin  DomainType = "admin"
)

// Domain maps the domains table / directory record.
// Hostname is stored lowercase; lookups are case-insensitive.
type Domain struct {
	ID          string     `db:"id" json:"id"`
	TenantID    string     `db:"tenant_id" json:"tenant_id"`
	Hostname    string     `db:"hostname" json:"hostname"`
	Type        DomainType `db:"type" json:"type"`
	IsPrimary   bool       `db:"is_primary" json:"is_primary"`
	Verified    bool       `db:"verified" json:"verified"`
	VerifyToken *string    `db:"verify_token" json:"verify_token,omitempty"`
	VerifiedAt  *time.Time `db:"verified_at" json:"verified_at,omitempty"`
}

// UsableFor reports whether d may resolve a request for hostname classified as t.
func (d *Domain) UsableFor(t DomainType) bool {
	return d != nil && d.Verified && d.Type == t
}
