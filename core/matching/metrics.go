package matching

import "github.com/prometheus/client_golang/prometheus"

var (
	scoringCalls     *prometheus.CounterVec
	scoringFallbacks *prometheus.CounterVec
	scoringLatency   prometheus.Histogram
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_scoring_calls_total",
		Help: "Number of candidate evaluations by outcome",
	}, []string{"outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_scoring_fallbacks_total",
		Help: "Number of candidates scored by the fallback heuristic",
	}, []string{"reason"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crewplan_scoring_latency_seconds",
		Help:    "Latency of reasoning provider calls",
		Buckets: prometheus.DefBuckets,
	})
	return calls, fallbacks, latency
}

func init() {
	scoringCalls, scoringFallbacks, scoringLatency = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers scoring metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(scoringCalls, scoringFallbacks, scoringLatency)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	scoringCalls, scoringFallbacks, scoringLatency = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
