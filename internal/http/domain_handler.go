package httpapi

import (
	"fmt"
	"net/http"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/repository"
	"via-fatto-painel/internal/service"

	"go.uber.org/zap"
)

// DomainHandler serves the back-office domain list and export of the host tenant.
// It must run behind HostTenantMiddleware.RequireTenant.
type DomainHandler struct {
	domains  repository.DomainsRepository
	export   *service.DomainExportService
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewDomainHandler(
	domains repository.DomainsRepository,
	export *service.DomainExportService,
	sessions *service.SessionService,
	logger *zap.Logger,
) *DomainHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DomainHandler{domains: domains, export: export, sessions: sessions, logger: logger}
}

func (h *DomainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/admin/api/v1/domains" && r.Method == http.MethodGet:
		h.ListDomains(w, r)
	case r.URL.Path == "/admin/api/v1/domains/export" && r.Method == http.MethodGet:
		h.ExportDomains(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListDomains returns the host tenant's domains to any member.
func (h *DomainHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	tenantID, role, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !role.IsMember() {
		writeJSON(w, http.StatusForbidden, Fail("forbidden"))
		return
	}

	items, err := h.domains.ListDomains(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("ListDomains failed", zap.String("tenant_id", tenantID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list domains: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

// ExportDomains returns the host tenant's domains as XLSX to owners and admins.
func (h *DomainHandler) ExportDomains(w http.ResponseWriter, r *http.Request) {
	tenantID, role, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !role.IsOwnerOrAdmin() {
		writeJSON(w, http.StatusForbidden, Fail("forbidden"))
		return
	}

	data, err := h.export.ExportDomains(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("ExportDomains failed", zap.String("tenant_id", tenantID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=domains-export.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// caller returns the host tenant and the requesting user's role in it.
func (h *DomainHandler) caller(w http.ResponseWriter, r *http.Request) (string, domain.Role, bool) {
	res, ok := TenantFromContext(r.Context())
	if !ok || !res.Resolved() {
		writeJSON(w, http.StatusForbidden, Fail("tenant not resolved"))
		return "", domain.RoleNone, false
	}
	userID := requestUser(r)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("user is required"))
		return "", domain.RoleNone, false
	}
	return res.TenantID(), h.sessions.FetchRole(r.Context(), res.TenantID(), userID), true
}
