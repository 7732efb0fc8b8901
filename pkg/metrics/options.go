package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace prefixes every collector name. Blank keeps "campusai".
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithLatencyBuckets replaces the millisecond buckets used by the inference,
// embedding and HTTP latency histograms.
func WithLatencyBuckets(bucketsMs []float64) Option {
	return func(m *Manager) {
		if len(bucketsMs) > 0 {
			m.latencyBucketsMs = bucketsMs
		}
	}
}

// WithMetricsEnabled switches the capability, inference and matching
// recorders on or off. HTTP, error and system collectors always record.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often the process refreshes system gauges.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithPrometheusRegistry registers collectors on r instead of the default registerer.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// RefreshInterval reports how often callers should refresh gauges.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// Enabled reports whether the domain recorders are on.
func (m *Manager) Enabled() bool {
	return m.enabled
}
