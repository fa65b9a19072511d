package repository

import (
	"context"
	"errors"

	"via-fatto-painel/internal/domain"
)

// ErrNotFound is returned when a directory lookup matches no record.
var ErrNotFound = errors.New("record not found")

// DomainsRepository reads the domain directory.
type DomainsRepository interface {
	// FindVerifiedDomains returns verified domains matching hostname and type.
	// hostname must already be normalized (lowercase, no port).
	// An empty slice (not ErrNotFound) means no match.
	FindVerifiedDomains(ctx context.Context, hostname string, domainType domain.DomainType) ([]*domain.Domain, error)

	// ListDomains returns every domain bound to tenantID, verified or not.
	ListDomains(ctx context.Context, tenantID string) ([]*domain.Domain, error)
}

// TenantsRepository reads the tenant directory.
type TenantsRepository interface {
	// GetActiveTenant returns the tenant with tenantID and status=active, or ErrNotFound.
	GetActiveTenant(ctx context.Context, tenantID string) (*domain.Tenant, error)
}

// MembershipsRepository reads the tenant membership directory.
type MembershipsRepository interface {
	// GetMemberRole returns the stored role string for (tenantID, userID), or ErrNotFound.
	GetMemberRole(ctx context.Context, tenantID, userID string) (string, error)
}

// Directory bundles the three directories served by one backend.
type Directory struct {
	Domains     DomainsRepository
	Tenants     TenantsRepository
	Memberships MembershipsRepository
}
