package tenancy

import (
	"encoding/json"
	"time"

	"via-fatto-painel/internal/domain"
)

// ErrorCode is the closed taxonomy of resolution failures. "" means no error.
type ErrorCode string

const (
	CodeNone             ErrorCode = ""
	CodeDomainQuery      ErrorCode = "DOMAIN_QUERY_ERROR"
	CodeDomainNotFound   ErrorCode = "DOMAIN_NOT_FOUND"
	CodeTenantNotFound   ErrorCode = "TENANT_NOT_FOUND"
	CodeResolution       ErrorCode = "RESOLUTION_ERROR"
	CodeAllMethodsFailed ErrorCode = "ALL_RESOLUTION_METHODS_FAILED"
)

// MarshalJSON renders CodeNone as null.
func (c ErrorCode) MarshalJSON() ([]byte, error) {
	if c == CodeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON accepts null as CodeNone.
func (c *ErrorCode) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = CodeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = ErrorCode(s)
	return nil
}

// Reason tags the path that produced a Result.
type Reason string

const (
	ReasonDomains       Reason = "domains"
	ReasonLocalOverride Reason = "localOverride"
	ReasonDevFallback   Reason = "devFallback"
	ReasonError         Reason = "error"
)

// Result is the outcome of one resolution attempt.
// Exactly one of (Tenant != nil, Error == CodeNone) or (Tenant == nil, Error != CodeNone) holds.
type Result struct {
	Tenant     *domain.Tenant `json:"tenant"`
	Domain     *domain.Domain `json:"domain"`
	Error      ErrorCode      `json:"error"`
	Reason     Reason         `json:"reason"`
	Hostname   string         `json:"hostname"`
	ResolvedAt time.Time      `json:"resolved_at"`
}

// Resolved reports whether a tenant was bound.
func (r Result) Resolved() bool {
	return r.Tenant != nil && r.Error == CodeNone
}

// TenantID returns the bound tenant id or "".
func (r Result) TenantID() string {
	if r.Tenant == nil {
		return ""
	}
	return r.Tenant.ID
}

// DomainResolution is the outcome of DomainResolver.ResolveByHostname.
type DomainResolution struct {
	Tenant *domain.Tenant
	Domain *domain.Domain
	Error  ErrorCode
}
