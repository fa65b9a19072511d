package tenancy

import (
	"context"
	"testing"

	"via-fatto-painel/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchActiveTenant(t *testing.T) {
	suspended := activeTenant("t-suspended", "old")
	suspended.Status = domain.TenantStatusSuspended
	ts := newFakeTenants(activeTenant(tenantA, "viafatto"), suspended)
	l := NewTenantLookup(ts, zap.NewNop())
	ctx := context.Background()

	got := l.FetchActiveTenant(ctx, tenantA)
	require.NotNil(t, got)
	assert.Equal(t, "viafatto", got.Name)

	assert.Nil(t, l.FetchActiveTenant(ctx, "t-suspended"))
	assert.Nil(t, l.FetchActiveTenant(ctx, "missing"))
}

func TestFetchActiveTenant_EmptyIDDoesNoIO(t *testing.T) {
	ts := newFakeTenants()
	l := NewTenantLookup(ts, zap.NewNop())

	assert.Nil(t, l.FetchActiveTenant(context.Background(), ""))
	assert.Empty(t, ts.asked)
}

func TestFetchActiveTenant_ErrorsCollapseToNil(t *testing.T) {
	ctx := context.Background()

	failing := newFakeTenants(activeTenant(tenantA, "viafatto"))
	failing.err = errBoom
	assert.Nil(t, NewTenantLookup(failing, zap.NewNop()).FetchActiveTenant(ctx, tenantA))

	exploding := newFakeTenants(activeTenant(tenantA, "viafatto"))
	exploding.panics = true
	l := NewTenantLookup(exploding, zap.NewNop())
	require.NotPanics(t, func() {
		assert.Nil(t, l.FetchActiveTenant(ctx, tenantA))
	})
}

// inactiveButFound ignores the status filter to mimic a misbehaving backend.
type inactiveButFound struct{}

func (inactiveButFound) GetActiveTenant(context.Context, string) (*domain.Tenant, error) {
	return &domain.Tenant{ID: "x", Status: domain.TenantStatusSuspended}, nil
}

func TestFetchActiveTenant_RechecksStatus(t *testing.T) {
	l := NewTenantLookup(inactiveButFound{}, nil)
	assert.Nil(t, l.FetchActiveTenant(context.Background(), "x"))
}
