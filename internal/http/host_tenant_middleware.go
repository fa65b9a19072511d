package httpapi

import (
	"context"
	"net/http"

	"via-fatto-painel/internal/service"
	"via-fatto-painel/internal/tenancy"

	"go.uber.org/zap"
)

type contextKey string

const resultKey contextKey = "tenancy_result"

// ContextWithTenant returns a context carrying res.
func ContextWithTenant(ctx context.Context, res tenancy.Result) context.Context {
	return context.WithValue(ctx, resultKey, res)
}

// TenantFromContext returns the resolution stored by RequireTenant.
func TenantFromContext(ctx context.Context) (tenancy.Result, bool) {
	res, ok := ctx.Value(resultKey).(tenancy.Result)
	return res, ok
}

// HostTenantMiddleware binds each request to the tenant of its Host.
type HostTenantMiddleware struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewHostTenantMiddleware(sessions *service.SessionService, logger *zap.Logger) *HostTenantMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostTenantMiddleware{sessions: sessions, logger: logger}
}

// RequireTenant resolves the request host and rejects the request with 403
// when no tenant binds.
func (m *HostTenantMiddleware) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ensureClientID(w, r)
		res := m.sessions.Resolve(r.Context(), clientID, requestHost(r))
		if !res.Resolved() {
			m.logger.Debug("request rejected, tenant not resolved",
				zap.String("hostname", res.Hostname),
				zap.String("error_code", string(res.Error)),
			)
			writeJSON(w, http.StatusForbidden, Fail("tenant not resolved"))
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), res)))
	})
}

// ensureClientID returns the client cookie, issuing one when absent.
func ensureClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := service.NewClientID()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	// later reads in this request see the new id
	r.AddCookie(&http.Cookie{Name: clientCookieName, Value: id})
	return id
}
