package tenancy

import (
	"context"
	"errors"
	"fmt"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/repository"

	"go.uber.org/zap"
)

// TenantLookup fetches active tenants. It never fails: a miss, a query error and
// a panicking directory all collapse into nil.
type TenantLookup struct {
	tenants repository.TenantsRepository
	logger  *zap.Logger
}

func NewTenantLookup(tenants repository.TenantsRepository, logger *zap.Logger) *TenantLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantLookup{tenants: tenants, logger: logger}
}

// FetchActiveTenant returns the active tenant with tenantID, or nil.
func (l *TenantLookup) FetchActiveTenant(ctx context.Context, tenantID string) (t *domain.Tenant) {
	if tenantID == "" || l.tenants == nil {
		return nil
	}

	defer func() {
		if p := recover(); p != nil {
			l.logger.Warn("tenant lookup panicked",
				zap.String("tenant_id", tenantID),
				zap.String("panic", fmt.Sprint(p)),
			)
			t = nil
		}
	}()

	tenant, err := l.tenants.GetActiveTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			l.logger.Warn("tenant lookup failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
		return nil
	}
	if !tenant.IsActive() {
		return nil
	}
	return tenant
}
