package service

import (
	"context"
	"sync"
	"time"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/events"
	"via-fatto-painel/internal/metrics"
	"via-fatto-painel/internal/store"
	"via-fatto-painel/internal/tenancy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// overrideScope namespaces per-client override slots in the KV.
const overrideScope = "painel:client"

// SessionService owns one TenantSession per (client, hostname) and the
// per-request resolution used by the admin middleware.
type SessionService struct {
	engine    *tenancy.Engine
	cache     *store.OverrideCache
	roles     *tenancy.RoleLookup
	publisher events.Publisher
	metrics   *metrics.Collector
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*TenantSession
	now      func() time.Time
}

func NewSessionService(
	engine *tenancy.Engine,
	cache *store.OverrideCache,
	roles *tenancy.RoleLookup,
	publisher events.Publisher,
	collector *metrics.Collector,
	logger *zap.Logger,
) *SessionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		engine:    engine,
		cache:     cache,
		roles:     roles,
		publisher: publisher,
		metrics:   collector,
		logger:    logger,
		sessions:  map[string]*TenantSession{},
		now:       time.Now,
	}
}

// NewClientID issues an identifier for a client that has none.
func NewClientID() string {
	return uuid.NewString()
}

// Session returns the session of clientID on hostname, creating it if needed.
// The session is not resolved until Bootstrap.
func (s *SessionService) Session(clientID, hostname string) *TenantSession {
	host := tenancy.NormalizeHostname(hostname)
	key := clientID + "|" + host

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.touch(s.now())
		return sess
	}
	sess := &TenantSession{
		clientID: clientID,
		hostname: host,
		svc:      s,
		lastSeen: s.now(),
	}
	s.sessions[key] = sess
	return sess
}

// Sweep drops sessions idle for longer than maxIdle and returns how many went.
func (s *SessionService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, k)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				s.logger.Debug("swept idle tenant sessions", zap.Int("count", n))
			}
		}
	}
}

// Resolve runs one resolution for clientID on hostname, recording metrics and
// publishing the resolution event.
func (s *SessionService) Resolve(ctx context.Context, clientID, hostname string) tenancy.Result {
	engine := s.engine
	if s.cache != nil && clientID != "" {
		engine = engine.WithCache(s.cache.Scoped(overrideScope, clientID))
	}

	start := time.Now()
	res := engine.Resolve(ctx, hostname)
	s.metrics.ObserveResolution(string(res.Reason), string(res.Error), time.Since(start))

	if err := s.publisher.Publish(ctx, events.NewResolutionEvent(res, clientID)); err != nil {
		s.logger.Warn("failed to publish resolution event",
			zap.String("hostname", res.Hostname),
			zap.String("client_id", clientID),
			zap.Error(err),
		)
	}
	return res
}

// FetchRole looks up userID's role in tenantID, recording metrics.
func (s *SessionService) FetchRole(ctx context.Context, tenantID, userID string) domain.Role {
	role := s.roles.FetchRole(ctx, tenantID, userID)
	if tenantID != "" && userID != "" {
		s.metrics.ObserveRoleLookup(string(role))
	}
	return role
}

// TenantSession is the hosting-side holder of one session's Binding.
// The session is its only writer; readers get copies.
type TenantSession struct {
	clientID string
	hostname string
	svc      *SessionService

	mu           sync.RWMutex
	binding      tenancy.Binding
	userID       string
	bootstrapped bool
	lastSeen     time.Time
}

// Binding returns a copy of the current binding.
func (t *TenantSession) Binding() tenancy.Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.binding
}

// ClientID returns the owning client id.
func (t *TenantSession) ClientID() string { return t.clientID }

// Hostname returns the normalized hostname the session is bound to.
func (t *TenantSession) Hostname() string { return t.hostname }

// Bootstrap resolves on first use and returns the binding.
func (t *TenantSession) Bootstrap(ctx context.Context) tenancy.Binding {
	t.mu.RLock()
	done := t.bootstrapped
	b := t.binding
	t.mu.RUnlock()
	if done {
		return b
	}
	return t.Refresh(ctx)
}

// Refresh re-resolves the tenant and recomputes the role for the current user.
// Concurrent refreshes are not serialized; the last one to finish wins.
func (t *TenantSession) Refresh(ctx context.Context) tenancy.Binding {
	res := t.svc.Resolve(ctx, t.clientID, t.hostname)

	t.mu.Lock()
	userID := t.userID
	loading := tenancy.NewBinding(res)
	loading.UserID = userID
	loading.RoleLoading = res.Resolved() && userID != ""
	t.binding = loading
	t.bootstrapped = true
	t.mu.Unlock()

	if !loading.RoleLoading {
		return loading
	}
	role := t.svc.FetchRole(ctx, res.TenantID(), userID)
	return t.storeRole(res.TenantID(), userID, role)
}

// SetUser records the authenticated user (""= signed out) and recomputes only
// the role; the tenant binding is left as is.
func (t *TenantSession) SetUser(ctx context.Context, userID string) tenancy.Binding {
	t.mu.Lock()
	t.userID = userID
	b := t.binding
	tenantID := b.TenantID()
	if !b.Resolved || userID == "" {
		t.binding = b.WithRole(userID, domain.RoleNone)
		out := t.binding
		t.mu.Unlock()
		return out
	}
	t.binding.UserID = userID
	t.binding.RoleLoading = true
	t.mu.Unlock()

	role := t.svc.FetchRole(ctx, tenantID, userID)
	return t.storeRole(tenantID, userID, role)
}

// storeRole applies role unless the tenant or user changed meanwhile.
func (t *TenantSession) storeRole(tenantID, userID string, role domain.Role) tenancy.Binding {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.binding.TenantID() == tenantID && t.userID == userID {
		t.binding = t.binding.WithRole(userID, role)
	}
	return t.binding
}

func (t *TenantSession) touch(now time.Time) {
	t.mu.Lock()
	t.lastSeen = now
	t.mu.Unlock()
}

func (t *TenantSession) idleSince() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSeen
}
