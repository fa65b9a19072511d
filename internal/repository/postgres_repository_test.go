package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"via-fatto-painel/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenantID = "11111111-1111-4111-8111-111111111111"

var domainRowColumns = []string{"id", "tenant_id", "hostname", "type", "is_primary", "verified", "verify_token", "verified_at"}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestFindVerifiedDomains_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDomainsRepository(db)

	verifiedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(domainRowColumns).
		AddRow("d-1", testTenantID, "painel.viafatto.com.br", "admin", true, true, "tok", verifiedAt).
		AddRow("d-2", testTenantID, "painel.viafatto.com.br", "admin", false, true, nil, nil)

	mock.ExpectQuery(`SELECT .+ FROM domains\s+WHERE lower\(hostname\) = \$1\s+AND type = \$2\s+AND verified = true`).
		WithArgs("painel.viafatto.com.br", "admin").
		WillReturnRows(rows)

	got, err := repo.FindVerifiedDomains(context.Background(), "painel.viafatto.com.br", domain.DomainTypeAdmin)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "d-1", got[0].ID)
	assert.Equal(t, domain.DomainTypeAdmin, got[0].Type)
	assert.True(t, got[0].IsPrimary)
	require.NotNil(t, got[0].VerifyToken)
	assert.Equal(t, "tok", *got[0].VerifyToken)
	require.NotNil(t, got[0].VerifiedAt)
	assert.True(t, verifiedAt.Equal(*got[0].VerifiedAt))

	assert.Nil(t, got[1].VerifyToken)
	assert.Nil(t, got[1].VerifiedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindVerifiedDomains_EmptyResult(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDomainsRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM domains`).
		WithArgs("viafatto.com.br", "public").
		WillReturnRows(sqlmock.NewRows(domainRowColumns))

	got, err := repo.FindVerifiedDomains(context.Background(), "viafatto.com.br", domain.DomainTypePublic)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindVerifiedDomains_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDomainsRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM domains`).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.FindVerifiedDomains(context.Background(), "viafatto.com.br", domain.DomainTypePublic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query domains")
}

func TestFindVerifiedDomains_RequiresHostname(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDomainsRepository(db)

	_, err := repo.FindVerifiedDomains(context.Background(), "", domain.DomainTypePublic)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDomains(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDomainsRepository(db)

	rows := sqlmock.NewRows(domainRowColumns).
		AddRow("d-1", testTenantID, "painel.viafatto.com.br", "admin", true, true, nil, nil).
		AddRow("d-2", testTenantID, "novo.viafatto.com.br", "public", false, false, "pending", nil)
	mock.ExpectQuery(`SELECT .+ FROM domains\s+WHERE tenant_id = \$1::uuid`).
		WithArgs(testTenantID).
		WillReturnRows(rows)

	got, err := repo.ListDomains(context.Background(), testTenantID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[1].Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveTenant(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db)

	mock.ExpectQuery(`FROM tenants\s+WHERE id = \$1::uuid\s+AND status = 'active'`).
		WithArgs(testTenantID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "status", "settings"}).
			AddRow(testTenantID, "Via Fatto", "viafatto", "active", []byte(`{"theme":"dark"}`)))

	got, err := repo.GetActiveTenant(context.Background(), testTenantID)
	require.NoError(t, err)
	assert.Equal(t, "Via Fatto", got.Name)
	assert.Equal(t, domain.TenantStatusActive, got.Status)
	assert.JSONEq(t, `{"theme":"dark"}`, string(got.Settings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveTenant_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db)

	mock.ExpectQuery(`FROM tenants`).
		WithArgs(testTenantID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActiveTenant(context.Background(), testTenantID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActiveTenant_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db)

	mock.ExpectQuery(`FROM tenants`).
		WithArgs(testTenantID).
		WillReturnError(errors.New("timeout"))

	_, err := repo.GetActiveTenant(context.Background(), testTenantID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestGetMemberRole(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresMembershipsRepository(db)
	userID := "33333333-3333-4333-8333-333333333333"

	mock.ExpectQuery(`SELECT role FROM tenant_members WHERE tenant_id = \$1::uuid AND user_id = \$2::uuid`).
		WithArgs(testTenantID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("owner"))
	mock.ExpectQuery(`SELECT role FROM tenant_members`).
		WithArgs(testTenantID, "missing").
		WillReturnError(sql.ErrNoRows)

	role, err := repo.GetMemberRole(context.Background(), testTenantID, userID)
	require.NoError(t, err)
	assert.Equal(t, "owner", role)

	_, err = repo.GetMemberRole(context.Background(), testTenantID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresDirectory(t *testing.T) {
	db, _ := setupMockDB(t)
	dir := NewPostgresDirectory(db)
	assert.IsType(t, &PostgresDomainsRepository{}, dir.Domains)
	assert.IsType(t, &PostgresTenantsRepository{}, dir.Tenants)
	assert.IsType(t, &PostgresMembershipsRepository{}, dir.Memberships)
}
