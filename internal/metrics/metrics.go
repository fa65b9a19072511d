package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "painel"

// Collector holds the tenancy metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	Resolutions        *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
	RoleLookups        *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenancy",
			Name:      "resolutions_total",
			Help:      "Tenant resolutions by reason and error code",
		}, []string{"reason", "error_code"}),
		ResolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tenancy",
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of one tenant resolution",
			Buckets:   prometheus.DefBuckets,
		}),
		RoleLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenancy",
			Name:      "role_lookups_total",
			Help:      "Membership role lookups by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(c.Resolutions, c.ResolutionDuration, c.RoleLookups)
	return c
}

// ObserveResolution records one resolution. Safe on a nil Collector.
func (c *Collector) ObserveResolution(reason, errorCode string, took time.Duration) {
	if c == nil {
		return
	}
	c.Resolutions.WithLabelValues(reason, errorCode).Inc()
	c.ResolutionDuration.Observe(took.Seconds())
}

// ObserveRoleLookup records one role lookup; outcome is the role or "none".
func (c *Collector) ObserveRoleLookup(outcome string) {
	if c == nil {
		return
	}
	if outcome == "" {
		outcome = "none"
	}
	c.RoleLookups.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
