package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of a Cache. A nil *Metrics records
// nothing.
type Metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fetches       prometheus.Counter
	fetchErrors   prometheus.Counter
	invalidations prometheus.Counter
	entries       prometheus.Gauge
}

// NewMetrics registers the cache collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapgram", Subsystem: "query_cache", Name: "hits_total",
			Help: "Reads answered from the cache.",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapgram", Subsystem: "query_cache", Name: "misses_total",
			Help: "Reads that had to wait for a fetch.",
		}),
		fetches: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapgram", Subsystem: "query_cache", Name: "fetches_total",
			Help: "Fetches executed against the backing services.",
		}),
		fetchErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapgram", Subsystem: "query_cache", Name: "fetch_errors_total",
			Help: "Fetches that returned an error.",
		}),
		invalidations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapgram", Subsystem: "query_cache", Name: "invalidated_entries_total",
			Help: "Entries marked stale by invalidation.",
		}),
		entries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "snapgram", Subsystem: "query_cache", Name: "entries",
			Help: "Entries currently held.",
		}),
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) fetch() {
	if m != nil {
		m.fetches.Inc()
	}
}

func (m *Metrics) fetchError() {
	if m != nil {
		m.fetchErrors.Inc()
	}
}

func (m *Metrics) invalidated(n int) {
	if m != nil {
		m.invalidations.Add(float64(n))
	}
}

func (m *Metrics) setEntries(n int) {
	if m != nil {
		m.entries.Set(float64(n))
	}
}
