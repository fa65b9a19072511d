package tenancy

import (
	"testing"

	"via-fatto-painel/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHostname(t *testing.T) {
	cases := map[string]string{
		"Painel.ViaFatto.com.br":     "painel.viafatto.com.br",
		"  localhost:5173 ":          "localhost",
		"viafatto.com.br.":           "viafatto.com.br",
		"127.0.0.1:8080":             "127.0.0.1",
		"":                           "",
		"painel.viafatto.com.br:443": "painel.viafatto.com.br",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHostname(in), "input %q", in)
	}
}

func TestClassifyEnvironment(t *testing.T) {
	cases := []struct {
		host   string
		isDev  bool
		isProd bool
	}{
		{"localhost", true, false},
		{"127.0.0.1", true, false},
		{"0.0.0.0", true, false},
		{"preview-123.lovable.app", true, false},
		{"abc.lovableproject.com", true, false},
		{"x.webcontainer.io", true, false},
		{"painel-git-main.vercel.app", true, false},
		{"site.netlify.app", true, false},
		{"painel.viafatto.com.br", false, true},
		{"viafatto.com.br", false, true},
		{"PAINEL.VIAFATTO.COM.BR", false, true},
		// dot-less names are neither dev nor prod
		{"painel-svc", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		env := ClassifyEnvironment(tc.host)
		assert.Equal(t, tc.isDev, env.IsDev, "IsDev(%q)", tc.host)
		assert.Equal(t, tc.isProd, env.IsProd, "IsProd(%q)", tc.host)
		assert.False(t, env.IsDev && env.IsProd, "dev and prod are exclusive for %q", tc.host)
	}
}

func TestClassifyDomainType(t *testing.T) {
	assert.Equal(t, domain.DomainTypeAdmin, ClassifyDomainType("painel.viafatto.com.br"))
	assert.Equal(t, domain.DomainTypeAdmin, ClassifyDomainType("Painel.Example.com"))
	assert.Equal(t, domain.DomainTypePublic, ClassifyDomainType("viafatto.com.br"))
	assert.Equal(t, domain.DomainTypePublic, ClassifyDomainType("www.viafatto.com.br"))
	// prefix only, not substring
	assert.Equal(t, domain.DomainTypePublic, ClassifyDomainType("meupainel.example.com"))
	assert.Equal(t, domain.DomainTypePublic, ClassifyDomainType("localhost"))
}
