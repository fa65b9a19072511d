package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"via-fatto-painel/internal/domain"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML fixture format for MemoryDirectory.
type Seed struct {
	Tenants []struct {
		ID       string         `yaml:"id"`
		Name     string         `yaml:"name"`
		Slug     string         `yaml:"slug"`
		Status   string         `yaml:"status"`
		Settings map[string]any `yaml:"settings"`
	} `yaml:"tenants"`
	Domains []struct {
		ID          string     `yaml:"id"`
		TenantID    string     `yaml:"tenant_id"`
		Hostname    string     `yaml:"hostname"`
		Type        string     `yaml:"type"`
		IsPrimary   bool       `yaml:"is_primary"`
		Verified    bool       `yaml:"verified"`
		VerifyToken string     `yaml:"verify_token"`
		VerifiedAt  *time.Time `yaml:"verified_at"`
	} `yaml:"domains"`
	Memberships []struct {
		TenantID string `yaml:"tenant_id"`
		UserID   string `yaml:"user_id"`
		Role     string `yaml:"role"`
	} `yaml:"memberships"`
}

// LoadSeedFile reads path and applies it to m.
func LoadSeedFile(path string, m *MemoryDirectory) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	return LoadSeed(b, m)
}

// LoadSeed parses YAML fixtures and applies them to m.
func LoadSeed(data []byte, m *MemoryDirectory) error {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}

	for i, t := range seed.Tenants {
		if t.ID == "" {
			return fmt.Errorf("seed tenant %d: id is required", i)
		}
		var settings json.RawMessage
		if t.Settings != nil {
			b, err := json.Marshal(t.Settings)
			if err != nil {
				return fmt.Errorf("seed tenant %s: settings: %w", t.ID, err)
			}
			settings = b
		}
		m.PutTenant(domain.Tenant{
			ID:       t.ID,
			Name:     t.Name,
			Slug:     t.Slug,
			Status:   domain.TenantStatus(t.Status),
			Settings: settings,
		})
	}

	for i, d := range seed.Domains {
		if d.Hostname == "" || d.TenantID == "" {
			return fmt.Errorf("seed domain %d: hostname and tenant_id are required", i)
		}
		dt := domain.DomainType(d.Type)
		if dt != domain.DomainTypeAdmin && dt != domain.DomainTypePublic {
			return fmt.Errorf("seed domain %s: invalid type %q", d.Hostname, d.Type)
		}
		rec := domain.Domain{
			ID:         d.ID,
			TenantID:   d.TenantID,
			Hostname:   d.Hostname,
			Type:       dt,
			IsPrimary:  d.IsPrimary,
			Verified:   d.Verified,
			VerifiedAt: d.VerifiedAt,
		}
		if d.VerifyToken != "" {
			tok := d.VerifyToken
			rec.VerifyToken = &tok
		}
		m.PutDomain(rec)
	}

	for _, mb := range seed.Memberships {
		m.PutMembership(mb.TenantID, mb.UserID, mb.Role)
	}
	return nil
}
