package tenancy

import (
	"context"
	"errors"
	"sync"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/repository"
)

var errBoom = errors.New("boom")

// fakeDomains is an in-memory DomainsRepository that counts calls.
type fakeDomains struct {
	mu      sync.Mutex
	records []*domain.Domain
	err     error
	panics  bool
	calls   int
}

func (f *fakeDomains) FindVerifiedDomains(_ context.Context, hostname string, t domain.DomainType) ([]*domain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics {
		panic("domains directory exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Domain
	for _, d := range f.records {
		if d.Hostname == hostname && d.Type == t && d.Verified {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDomains) ListDomains(_ context.Context, tenantID string) ([]*domain.Domain, error) {
	var out []*domain.Domain
	for _, d := range f.records {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeTenants is an in-memory TenantsRepository recording each requested id.
type fakeTenants struct {
	mu      sync.Mutex
	tenants map[string]*domain.Tenant
	err     error
	panics  bool
	asked   []string
}

func newFakeTenants(ts ...*domain.Tenant) *fakeTenants {
	f := &fakeTenants{tenants: map[string]*domain.Tenant{}}
	for _, t := range ts {
		f.tenants[t.ID] = t
	}
	return f
}

func (f *fakeTenants) GetActiveTenant(_ context.Context, id string) (*domain.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, id)
	if f.panics {
		panic("tenants directory exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tenants[id]
	if !ok || t.Status != domain.TenantStatusActive {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenants) askedFor(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.asked {
		if a == id {
			n++
		}
	}
	return n
}

// fakeMembers is an in-memory MembershipsRepository keyed by "tenant|user".
type fakeMembers struct {
	roles  map[string]string
	err    error
	panics bool
}

func (f *fakeMembers) GetMemberRole(_ context.Context, tenantID, userID string) (string, error) {
	if f.panics {
		panic("memberships directory exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	r, ok := f.roles[tenantID+"|"+userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return r, nil
}

// spyCache is an OverrideStore counting reads and writes.
type spyCache struct {
	mu      sync.Mutex
	value   string
	getErr  error
	setErr  error
	gets    int
	sets    int
	written []string
}

func (s *spyCache) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.value, nil
}

func (s *spyCache) Set(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.value = id
	s.written = append(s.written, id)
	return nil
}

func activeTenant(id, name string) *domain.Tenant {
	return &domain.Tenant{ID: id, Name: name, Slug: name, Status: domain.TenantStatusActive}
}

func verifiedDomain(id, tenantID, host string, t domain.DomainType) *domain.Domain {
	return &domain.Domain{ID: id, TenantID: tenantID, Hostname: host, Type: t, Verified: true}
}
