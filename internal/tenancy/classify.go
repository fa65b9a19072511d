package tenancy

import (
	"net"
	"strings"

	"via-fatto-painel/internal/domain"
)

// AdminPrefix marks hostnames that serve the admin panel.
const AdminPrefix = "painel."

// devIndicators is the closed list of development / preview host markers.
var devIndicators = []string{
	"localhost",
	"127.0.0.1",
	"0.0.0.0",
	"lovable.app",
	"lovableproject.com",
	"webcontainer.io",
	"vercel.app",
	"netlify.app",
}

// Environment is the classification of a runtime hostname.
type Environment struct {
	IsDev  bool `json:"is_dev"`
	IsProd bool `json:"is_prod"`
}

// NormalizeHostname lowercases h and strips surrounding space, a :port suffix
// and a trailing dot.
func NormalizeHostname(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	return strings.TrimSuffix(h, ".")
}

// ClassifyEnvironment marks h as development when it contains a dev indicator,
// and as production when it is not development and contains a dot.
// A dot-less name that is not a dev indicator is neither.
func ClassifyEnvironment(h string) Environment {
	h = NormalizeHostname(h)
	isDev := false
	for _, ind := range devIndicators {
		if strings.Contains(h, ind) {
			isDev = true
			break
		}
	}
	return Environment{
		IsDev:  isDev,
		IsProd: !isDev && strings.Contains(h, "."),
	}
}

// ClassifyDomainType returns admin for AdminPrefix hosts and public otherwise.
func ClassifyDomainType(h string) domain.DomainType {
	if strings.HasPrefix(NormalizeHostname(h), AdminPrefix) {
		return domain.DomainTypeAdmin
	}
	return domain.DomainTypePublic
}
