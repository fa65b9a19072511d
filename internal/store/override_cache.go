package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultOverrideKey is the key holding the last resolved tenant id.
const DefaultOverrideKey = "active_tenant_id"

// OverrideCache is the single-slot "last known tenant" cache of one client.
// It is a KV entry named Key, optionally namespaced by a client scope.
type OverrideCache struct {
	kv  KV
	key string
	ttl time.Duration
}

// NewOverrideCache returns a cache stored under key (DefaultOverrideKey when empty).
func NewOverrideCache(kv KV, key string, ttl time.Duration) *OverrideCache {
	if key == "" {
		key = DefaultOverrideKey
	}
	return &OverrideCache{kv: kv, key: key, ttl: ttl}
}

// Scoped returns a cache for one client; the slot becomes "<prefix>:<scope>:<key>".
func (c *OverrideCache) Scoped(prefix, scope string) *OverrideCache {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, scope} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, c.key)
	return &OverrideCache{kv: c.kv, key: strings.Join(parts, ":"), ttl: c.ttl}
}

// Key returns the full KV key of the slot.
func (c *OverrideCache) Key() string {
	return c.key
}

// Get returns the cached tenant id, or "" when the slot is empty.
func (c *OverrideCache) Get(ctx context.Context) (string, error) {
	v, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// Set overwrites the slot with tenantID.
func (c *OverrideCache) Set(ctx context.Context, tenantID string) error {
	return c.kv.Set(ctx, c.key, tenantID, c.ttl)
}

// Clear empties the slot.
func (c *OverrideCache) Clear(ctx context.Context) error {
	return c.kv.Delete(ctx, c.key)
}
