package tenancy

import (
	"context"
	"fmt"
	"sort"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/repository"

	"go.uber.org/zap"
)

// DomainResolver maps a hostname to its tenant through a verified domain record.
type DomainResolver struct {
	domains repository.DomainsRepository
	tenants *TenantLookup
	logger  *zap.Logger
}

func NewDomainResolver(domains repository.DomainsRepository, tenants *TenantLookup, logger *zap.Logger) *DomainResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DomainResolver{domains: domains, tenants: tenants, logger: logger}
}

// ResolveByHostname never panics; failures come back as an ErrorCode.
func (r *DomainResolver) ResolveByHostname(ctx context.Context, hostname string) (res DomainResolution) {
	host := NormalizeHostname(hostname)

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("domain resolution panicked",
				zap.String("hostname", host),
				zap.String("panic", fmt.Sprint(p)),
			)
			res = DomainResolution{Error: CodeResolution}
		}
	}()

	if host == "" {
		return DomainResolution{Error: CodeDomainNotFound}
	}

	domainType := ClassifyDomainType(host)
	records, err := r.domains.FindVerifiedDomains(ctx, host, domainType)
	if err != nil {
		r.logger.Warn("domain query failed",
			zap.String("hostname", host),
			zap.String("domain_type", string(domainType)),
			zap.Error(err),
		)
		return DomainResolution{Error: CodeDomainQuery}
	}

	d := pickDomain(records, host, domainType)
	if d == nil {
		return DomainResolution{Error: CodeDomainNotFound}
	}

	tenant := r.tenants.FetchActiveTenant(ctx, d.TenantID)
	if tenant == nil {
		return DomainResolution{Domain: d, Error: CodeTenantNotFound}
	}
	return DomainResolution{Tenant: tenant, Domain: d}
}

// pickDomain keeps usable records for host and breaks ties by is_primary,
// then latest verified_at (unset last), then lowest id.
func pickDomain(records []*domain.Domain, host string, domainType domain.DomainType) *domain.Domain {
	candidates := make([]*domain.Domain, 0, len(records))
	for _, d := range records {
		if d == nil || !d.UsableFor(domainType) || NormalizeHostname(d.Hostname) != host {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		switch {
		case a.VerifiedAt != nil && b.VerifiedAt == nil:
			return true
		case a.VerifiedAt == nil && b.VerifiedAt != nil:
			return false
		case a.VerifiedAt != nil && b.VerifiedAt != nil && !a.VerifiedAt.Equal(*b.VerifiedAt):
			return a.VerifiedAt.After(*b.VerifiedAt)
		}
		return a.ID < b.ID
	})
	return candidates[0]
}
