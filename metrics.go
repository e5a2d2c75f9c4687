package mormotauth

import "sync/atomic"

// MetricID identifies one client counter.
type MetricID uint16

const (
	// MetricNonceFetch counts login challenges fetched from the Auth endpoint.
	MetricNonceFetch MetricID = iota
	// MetricLoginSuccess counts completed handshakes.
	MetricLoginSuccess
	// MetricLoginRejected counts handshakes declined by the server.
	MetricLoginRejected
	// MetricSessionResumed counts sessions restored from the cache.
	MetricSessionResumed
	// MetricSessionInvalidated counts sessions dropped by Invalidate.
	MetricSessionInvalidated
	// MetricPathsSigned counts request paths signed.
	MetricPathsSigned
	// MetricRequests counts signed requests dispatched over the transport.
	MetricRequests
	// MetricNetworkErrors counts transport failures.
	MetricNetworkErrors
	// MetricProtocolErrors counts malformed Auth responses.
	MetricProtocolErrors

	metricCount
)

// Metrics is a fixed array of atomic counters. All operations are
// allocation-free on the hot path; Snapshot allocates the returned map.
type Metrics struct {
	enabled  bool
	counters [metricCount]atomic.Uint64
}

// NewMetrics creates a Metrics set honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id. Unknown IDs and disabled metrics are
// silently ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values. Disabled metrics yield an
// empty map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
