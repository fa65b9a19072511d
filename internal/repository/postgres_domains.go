package repository

import (
	"context"
	"database/sql"
	"fmt"

	"via-fatto-painel/internal/domain"
)

// PostgresDomainsRepository reads the domains table.
type PostgresDomainsRepository struct {
	db *sql.DB
}

func NewPostgresDomainsRepository(db *sql.DB) *PostgresDomainsRepository {
	return &PostgresDomainsRepository{db: db}
}

var _ DomainsRepository = (*PostgresDomainsRepository)(nil)

const domainColumns = `
	id::text,
	tenant_id::text,
	lower(hostname),
	type,
	COALESCE(is_primary, false),
	COALESCE(verified, false),
	verify_token,
	verified_at`

func (r *PostgresDomainsRepository) FindVerifiedDomains(ctx context.Context, hostname string, domainType domain.DomainType) ([]*domain.Domain, error) {
	if hostname == "" {
		return nil, fmt.Errorf("hostname is required")
	}

	query := `SELECT ` + domainColumns + `
		FROM domains
		WHERE lower(hostname) = $1
		  AND type = $2
		  AND verified = true
		ORDER BY is_primary DESC, verified_at DESC NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, hostname, string(domainType))
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	return scanDomains(rows)
}

func (r *PostgresDomainsRepository) ListDomains(ctx context.Context, tenantID string) ([]*domain.Domain, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `SELECT ` + domainColumns + `
		FROM domains
		WHERE tenant_id = $1::uuid
		ORDER BY type, is_primary DESC, hostname`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	return scanDomains(rows)
}

func scanDomains(rows *sql.Rows) ([]*domain.Domain, error) {
	out := []*domain.Domain{}
	for rows.Next() {
		var (
			d           domain.Domain
			domainType  string
			verifyToken sql.NullString
			verifiedAt  sql.NullTime
		)
		if err := rows.Scan(
			&d.ID,
			&d.TenantID,
			&d.Hostname,
			&domainType,
			&d.IsPrimary,
			&d.Verified,
			&verifyToken,
			&verifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		d.Type = domain.DomainType(domainType)
		if verifyToken.Valid {
			tok := verifyToken.String
			d.VerifyToken = &tok
		}
		if verifiedAt.Valid {
			at := verifiedAt.Time
			d.VerifiedAt = &at
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate domains: %w", err)
	}
	return out, nil
}
