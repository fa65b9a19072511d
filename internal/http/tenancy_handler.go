package httpapi

import (
	"net/http"
	"strings"

	"via-fatto-painel/internal/service"
	"via-fatto-painel/internal/tenancy"

	"go.uber.org/zap"
)

// TenancyHandler serves classification, session binding and role lookups.
type TenancyHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewTenancyHandler(sessions *service.SessionService, logger *zap.Logger) *TenancyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenancyHandler{sessions: sessions, logger: logger}
}

// Classify reports the environment and domain type of ?hostname= (default: request host).
func (h *TenancyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	host := strings.TrimSpace(r.URL.Query().Get("hostname"))
	if host == "" {
		host = requestHost(r)
	}
	host = tenancy.NormalizeHostname(host)
	env := tenancy.ClassifyEnvironment(host)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"hostname":    host,
		"is_dev":      env.IsDev,
		"is_prod":     env.IsProd,
		"domain_type": tenancy.ClassifyDomainType(host),
	}))
}

// GetContext returns the session binding, resolving it on first use.
func (h *TenancyHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	b := sess.Bootstrap(r.Context())
	b = h.syncUser(r, sess, b)
	writeJSON(w, http.StatusOK, Ok(b))
}

// RefreshContext re-resolves the session tenant.
func (h *TenancyHandler) RefreshContext(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	b := sess.Refresh(r.Context())
	b = h.syncUser(r, sess, b)
	writeJSON(w, http.StatusOK, Ok(b))
}

// SetUser records the signed-in user of the session and recomputes its role.
func (h *TenancyHandler) SetUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	sess := h.session(w, r)
	sess.Bootstrap(r.Context())
	b := sess.SetUser(r.Context(), strings.TrimSpace(payload.UserID))
	h.logger.Debug("session user changed",
		zap.String("client_id", sess.ClientID()),
		zap.String("user_id", b.UserID),
		zap.String("tenant_id", b.TenantID()),
	)
	writeJSON(w, http.StatusOK, Ok(b))
}

// GetRole looks up ?user_id= in ?tenant_id=.
func (h *TenancyHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := strings.TrimSpace(q.Get("tenant_id"))
	userID := strings.TrimSpace(q.Get("user_id"))
	if userID == "" {
		userID = requestUser(r)
	}
	if tenantID == "" || userID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("tenant_id and user_id are required"))
		return
	}
	role := h.sessions.FetchRole(r.Context(), tenantID, userID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"tenant_id":         tenantID,
		"user_id":           userID,
		"role":              role,
		"is_member":         role.IsMember(),
		"is_owner_or_admin": role.IsOwnerOrAdmin(),
		"can_manage_users":  role.CanManageUsers(),
	}))
}

func (h *TenancyHandler) session(w http.ResponseWriter, r *http.Request) *service.TenantSession {
	return h.sessions.Session(ensureClientID(w, r), requestHost(r))
}

// syncUser applies the X-User-ID header when it differs from the session user.
func (h *TenancyHandler) syncUser(r *http.Request, sess *service.TenantSession, b tenancy.Binding) tenancy.Binding {
	user := requestUser(r)
	if user == "" || user == b.UserID {
		return b
	}
	return sess.SetUser(r.Context(), user)
}
