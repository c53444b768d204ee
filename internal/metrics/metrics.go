// Package metrics exposes cache outcomes as Prometheus collectors.
package metrics

import (
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blogcache"

// CacheMetrics implements cache.Recorder.
type CacheMetrics struct {
	operations   *prometheus.CounterVec
	versionBumps *prometheus.CounterVec
	breaker      *prometheus.GaugeVec
}

var _ cache.Recorder = (*CacheMetrics)(nil)

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which keeps tests independent of the default registry.
func New(reg prometheus.Registerer) (*CacheMetrics, error) {
	m := &CacheMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by cache, kind and result.",
		}, []string{"cache", "kind", "result"}),
		versionBumps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_bumps_total",
			Help:      "Collection version increments by collection prefix.",
		}, []string{"collection"}),
		breaker: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.operations, m.versionBumps, m.breaker} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *CacheMetrics) Observe(cacheName, kind, result string) {
	m.operations.WithLabelValues(cacheName, kind, result).Inc()
}

func (m *CacheMetrics) VersionBumped(collection string) {
	m.versionBumps.WithLabelValues(collection).Inc()
}

// BreakerChanged matches cache.WithBreakerListener.
func (m *CacheMetrics) BreakerChanged(name, _, to string) {
	m.breaker.WithLabelValues(name).Set(breakerValue(to))
}

func breakerValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
