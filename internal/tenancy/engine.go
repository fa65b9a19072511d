package tenancy

import (
	"context"
	"fmt"
	"time"

	"via-fatto-painel/internal/domain"

	"go.uber.org/zap"
)

// OverrideStore is the single-slot local override cache.
// Get returns "" when the slot is empty.
type OverrideStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, tenantID string) error
}

// Options configures an Engine.
type Options struct {
	// FallbackTenantID is the build-time tenant used last in non-production.
	FallbackTenantID string
	// IsDevBuild enables step-by-step debug logging. It never changes decisions.
	IsDevBuild bool
}

// Engine binds a hostname to exactly one tenant:
//
//  1. verified domain (any environment); success overwrites the override cache
//  2. override cache (non-production only)
//  3. static fallback tenant (non-production only); success writes the cache
//
// Production hostnames stop after step 1.
type Engine struct {
	domains *DomainResolver
	tenants *TenantLookup
	cache   OverrideStore
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

func NewEngine(domains *DomainResolver, tenants *TenantLookup, cache OverrideStore, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		domains: domains,
		tenants: tenants,
		cache:   cache,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// WithCache returns a copy of e bound to another override slot (one per client).
func (e *Engine) WithCache(cache OverrideStore) *Engine {
	cp := *e
	cp.cache = cache
	return &cp
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Resolve runs the three steps in order with fresh I/O each call.
// It never panics and never returns an error; failures are encoded in Result.
func (e *Engine) Resolve(ctx context.Context, hostname string) (res Result) {
	host := NormalizeHostname(hostname)
	env := ClassifyEnvironment(host)
	log := e.logger.With(zap.String("hostname", host))

	defer func() {
		if p := recover(); p != nil {
			log.Error("tenant resolution panicked", zap.String("panic", fmt.Sprint(p)))
			res = e.failure(host, CodeResolution, nil)
		}
	}()

	e.trace(log, "resolving tenant", zap.Bool("is_dev", env.IsDev), zap.Bool("is_prod", env.IsProd))

	byDomain := e.domains.ResolveByHostname(ctx, host)
	if byDomain.Tenant != nil && byDomain.Error == CodeNone {
		// domain truth always wins over whatever the cache held
		e.writeCache(ctx, log, byDomain.Tenant.ID)
		e.trace(log, "resolved by domain", zap.String("tenant_id", byDomain.Tenant.ID))
		return Result{
			Tenant:     byDomain.Tenant,
			Domain:     byDomain.Domain,
			Reason:     ReasonDomains,
			Hostname:   host,
			ResolvedAt: e.now(),
		}
	}

	if env.IsProd {
		log.Warn("production hostname did not resolve", zap.String("error_code", string(byDomain.Error)))
		return e.failure(host, byDomain.Error, byDomain.Domain)
	}

	if cached := e.readCache(ctx, log); cached != "" {
		if t := e.tenants.FetchActiveTenant(ctx, cached); t != nil {
			e.trace(log, "resolved by local override", zap.String("tenant_id", t.ID))
			return Result{
				Tenant:     t,
				Reason:     ReasonLocalOverride,
				Hostname:   host,
				ResolvedAt: e.now(),
			}
		}
		e.trace(log, "local override is stale", zap.String("tenant_id", cached))
	}

	if t := e.tenants.FetchActiveTenant(ctx, e.opts.FallbackTenantID); t != nil {
		e.writeCache(ctx, log, t.ID)
		e.trace(log, "resolved by dev fallback", zap.String("tenant_id", t.ID))
		return Result{
			Tenant:     t,
			Reason:     ReasonDevFallback,
			Hostname:   host,
			ResolvedAt: e.now(),
		}
	}

	log.Warn("all tenant resolution methods failed", zap.String("domain_error", string(byDomain.Error)))
	return e.failure(host, CodeAllMethodsFailed, nil)
}

// failure keeps the matched domain (if any) for error display.
func (e *Engine) failure(host string, code ErrorCode, d *domain.Domain) Result {
	if code == CodeNone {
		code = CodeResolution
	}
	return Result{
		Domain:     d,
		Error:      code,
		Reason:     ReasonError,
		Hostname:   host,
		ResolvedAt: e.now(),
	}
}

func (e *Engine) readCache(ctx context.Context, log *zap.Logger) (id string) {
	if e.cache == nil {
		return ""
	}
	defer func() {
		if p := recover(); p != nil {
			log.Warn("override cache read panicked", zap.String("panic", fmt.Sprint(p)))
			id = ""
		}
	}()
	v, err := e.cache.Get(ctx)
	if err != nil {
		log.Warn("override cache read failed", zap.Error(err))
		return ""
	}
	return v
}

func (e *Engine) writeCache(ctx context.Context, log *zap.Logger, tenantID string) {
	if e.cache == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			log.Warn("override cache write panicked", zap.String("panic", fmt.Sprint(p)))
		}
	}()
	if err := e.cache.Set(ctx, tenantID); err != nil {
		log.Warn("override cache write failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}

func (e *Engine) trace(log *zap.Logger, msg string, fields ...zap.Field) {
	if e.opts.IsDevBuild {
		log.Debug(msg, fields...)
	}
}
