package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	commoncfg "via-fatto-painel/common/config"
	"via-fatto-painel/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RestDirectory reads domains, tenants and memberships from the hosted backend's
// PostgREST interface (equality filters, JSON arrays).
type RestDirectory struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewRestDirectory builds a directory client. Requests are never retried here;
// callers re-run resolution instead.
func NewRestDirectory(cfg commoncfg.RestConfig, logger *zap.Logger) (*RestDirectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("apikey", cfg.APIKey)
		client.SetAuthToken(cfg.APIKey)
	}

	return &RestDirectory{httpClient: client, logger: logger}, nil
}

// Directory exposes r as the three repository interfaces.
func (r *RestDirectory) Directory() *Directory {
	return &Directory{Domains: r, Tenants: r, Memberships: r}
}

var (
	_ DomainsRepository     = (*RestDirectory)(nil)
	_ TenantsRepository     = (*RestDirectory)(nil)
	_ MembershipsRepository = (*RestDirectory)(nil)
)

const restDomainSelect = "id,tenant_id,hostname,type,is_primary,verified,verify_token,verified_at"

func (r *RestDirectory) FindVerifiedDomains(ctx context.Context, hostname string, domainType domain.DomainType) ([]*domain.Domain, error) {
	if hostname == "" {
		return nil, fmt.Errorf("hostname is required")
	}

	var rows []*domain.Domain
	err := r.get(ctx, "/rest/v1/domains", map[string]string{
		"select":   restDomainSelect,
		// ilike on an escaped literal is a case-insensitive exact match
		"hostname": "ilike." + likeLiteral(hostname),
		"type":     "eq." + string(domainType),
		"verified": "eq.true",
		"order":    "is_primary.desc,verified_at.desc.nullslast,id.asc",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	for _, d := range rows {
		d.Hostname = strings.ToLower(d.Hostname)
	}
	return rows, nil
}

func (r *RestDirectory) ListDomains(ctx context.Context, tenantID string) ([]*domain.Domain, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	var rows []*domain.Domain
	err := r.get(ctx, "/rest/v1/domains", map[string]string{
		"select":    restDomainSelect,
		"tenant_id": "eq." + tenantID,
		"order":     "type.asc,is_primary.desc,hostname.asc",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return rows, nil
}

func (r *RestDirectory) GetActiveTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	var rows []*domain.Tenant
	err := r.get(ctx, "/rest/v1/tenants", map[string]string{
		"select": "id,name,slug,status,settings",
		"id":     "eq." + tenantID,
		"status": "eq." + string(domain.TenantStatusActive),
		"limit":  "1",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (r *RestDirectory) GetMemberRole(ctx context.Context, tenantID, userID string) (string, error) {
	if tenantID == "" || userID == "" {
		return "", fmt.Errorf("tenant_id and user_id are required")
	}

	var rows []struct {
		Role string `json:"role"`
	}
	err := r.get(ctx, "/rest/v1/tenant_members", map[string]string{
		"select":    "role",
		"tenant_id": "eq." + tenantID,
		"user_id":   "eq." + userID,
		"limit":     "1",
	}, &rows)
	if err != nil {
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rows[0].Role, nil
}

// likeLiteral escapes the LIKE metacharacters of s.
func likeLiteral(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *RestDirectory) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(path)
	if err != nil {
		r.logger.Warn("directory request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	if resp.IsError() {
		r.logger.Warn("directory returned error status",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("directory %s returned status %d", path, resp.StatusCode())
	}
	return nil
}
