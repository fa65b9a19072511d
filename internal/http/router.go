package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger

	trustForwardedHost bool
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers an http.Handler (metrics, middleware chains).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// TrustForwardedHost makes the router take the request host from
// X-Forwarded-Host. Only enable it behind a proxy that overwrites the header.
func (r *Router) TrustForwardedHost(trust bool) {
	r.trustForwardedHost = trust
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.trustForwardedHost {
		if host := forwardedHost(req); host != "" {
			req = req.Clone(req.Context())
			req.Host = host
		}
	}
	r.mux.ServeHTTP(w, req)
}

// RegisterTenancyRoutes registers the session and lookup endpoints.
func (r *Router) RegisterTenancyRoutes(h *TenancyHandler) {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})

	r.Handle("/tenancy/api/v1/classify", method(http.MethodGet, h.Classify))
	r.Handle("/tenancy/api/v1/context", method(http.MethodGet, h.GetContext))
	r.Handle("/tenancy/api/v1/context/refresh", method(http.MethodPost, h.RefreshContext))
	r.Handle("/tenancy/api/v1/context/user", method(http.MethodPut, h.SetUser))
	r.Handle("/tenancy/api/v1/role", method(http.MethodGet, h.GetRole))
}

// RegisterDomainRoutes registers the back-office domain endpoints behind the
// host tenant middleware.
func (r *Router) RegisterDomainRoutes(h *DomainHandler, mw *HostTenantMiddleware) {
	r.HandleHandler("/admin/api/v1/domains", mw.RequireTenant(h))
	r.HandleHandler("/admin/api/v1/domains/", mw.RequireTenant(h))
}

// RegisterMetrics exposes the Prometheus handler.
func (r *Router) RegisterMetrics(h http.Handler) {
	r.HandleHandler("/metrics", h)
}

func method(m string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, req)
	}
}
