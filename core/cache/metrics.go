package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheFailures *prometheus.CounterVec
	cacheUp       prometheus.Gauge
)

func newCollectors() (prometheus.Counter, prometheus.Counter, *prometheus.CounterVec, prometheus.Gauge) {
	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crewplan_cache_hits_total",
		Help: "Number of cache lookups served from the cache",
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crewplan_cache_misses_total",
		Help: "Number of cache lookups that missed, including degraded lookups",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_cache_failures_total",
		Help: "Number of failed cache backend operations",
	}, []string{"op"})
	up := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crewplan_cache_connected",
		Help: "1 when the cache backend is considered reachable",
	})
	return hits, misses, failures, up
}

func init() {
	cacheHits, cacheMisses, cacheFailures, cacheUp = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers cache metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cacheHits, cacheMisses, cacheFailures, cacheUp)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	cacheHits, cacheMisses, cacheFailures, cacheUp = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
