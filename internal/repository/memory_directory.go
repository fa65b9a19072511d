package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"via-fatto-painel/internal/domain"

	"github.com/google/uuid"
)

// MemoryDirectory serves all three directories from process memory.
// Used for local development (optionally seeded from YAML) and tests.
type MemoryDirectory struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant // id -> tenant
	domains map[string]domain.Domain // id -> domain
	members map[string]string        // tenantID|userID -> role
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		tenants: map[string]domain.Tenant{},
		domains: map[string]domain.Domain{},
		members: map[string]string{},
	}
}

// Directory exposes m as the three repository interfaces.
func (m *MemoryDirectory) Directory() *Directory {
	return &Directory{Domains: m, Tenants: m, Memberships: m}
}

var (
	_ DomainsRepository     = (*MemoryDirectory)(nil)
	_ TenantsRepository     = (*MemoryDirectory)(nil)
	_ MembershipsRepository = (*MemoryDirectory)(nil)
)

// PutTenant inserts or replaces t. An empty ID gets a new UUID, which is returned.
func (m *MemoryDirectory) PutTenant(t domain.Tenant) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TenantStatusActive
	}
	m.tenants[t.ID] = t
	return t.ID
}

// PutDomain inserts or replaces d. Hostnames are stored lowercase.
func (m *MemoryDirectory) PutDomain(d domain.Domain) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Type == "" {
		d.Type = domain.DomainTypePublic
	}
	d.Hostname = strings.ToLower(strings.TrimSpace(d.Hostname))
	m.domains[d.ID] = d
	return d.ID
}

// PutMembership sets the role of userID in tenantID.
func (m *MemoryDirectory) PutMembership(tenantID, userID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[memberKey(tenantID, userID)] = role
}

func (m *MemoryDirectory) FindVerifiedDomains(_ context.Context, hostname string, domainType domain.DomainType) ([]*domain.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*domain.Domain{}
	for _, d := range m.domains {
		if d.Hostname != hostname || !d.UsableFor(domainType) {
			continue
		}
		d := d
		out = append(out, &d)
	}
	// stable order; the resolver applies its own tie-break
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryDirectory) ListDomains(_ context.Context, tenantID string) ([]*domain.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*domain.Domain{}
	for _, d := range m.domains {
		if d.TenantID != tenantID {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].Hostname < out[j].Hostname
	})
	return out, nil
}

func (m *MemoryDirectory) GetActiveTenant(_ context.Context, tenantID string) (*domain.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenants[tenantID]
	if !ok || !t.IsActive() {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryDirectory) GetMemberRole(_ context.Context, tenantID, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.members[memberKey(tenantID, userID)]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func memberKey(tenantID, userID string) string {
	return tenantID + "|" + userID
}
