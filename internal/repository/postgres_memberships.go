package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresMembershipsRepository reads the tenant_members table.
type PostgresMembershipsRepository struct {
	db *sql.DB
}

func NewPostgresMembershipsRepository(db *sql.DB) *PostgresMembershipsRepository {
	return &PostgresMembershipsRepository{db: db}
}

var _ MembershipsRepository = (*PostgresMembershipsRepository)(nil)

func (r *PostgresMembershipsRepository) GetMemberRole(ctx context.Context, tenantID, userID string) (string, error) {
	if tenantID == "" || userID == "" {
		return "", fmt.Errorf("tenant_id and user_id are required")
	}

	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM tenant_members WHERE tenant_id = $1::uuid AND user_id = $2::uuid`,
		tenantID, userID,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	return role, nil
}

// NewPostgresDirectory wires all three Postgres repositories on one pool.
func NewPostgresDirectory(db *sql.DB) *Directory {
	return &Directory{
		Domains:     NewPostgresDomainsRepository(db),
		Tenants:     NewPostgresTenantsRepository(db),
		Memberships: NewPostgresMembershipsRepository(db),
	}
}
