package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"via-fatto-painel/internal/domain"
)

// PostgresTenantsRepository reads the tenants table.
type PostgresTenantsRepository struct {
	db *sql.DB
}

func NewPostgresTenantsRepository(db *sql.DB) *PostgresTenantsRepository {
	return &PostgresTenantsRepository{db: db}
}

var _ TenantsRepository = (*PostgresTenantsRepository)(nil)

func (r *PostgresTenantsRepository) GetActiveTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `
		SELECT
			id::text,
			name,
			COALESCE(slug, '') as slug,
			status,
			COALESCE(settings, '{}'::jsonb) as settings
		FROM tenants
		WHERE id = $1::uuid
		  AND status = 'active'
	`

	var (
		t        domain.Tenant
		status   string
		settings []byte
	)
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&status,
		&settings,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	t.Status = domain.TenantStatus(status)
	t.Settings = json.RawMessage(settings)
	return &t, nil
}
