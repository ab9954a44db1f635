package planning

import "github.com/prometheus/client_golang/prometheus"

var (
	cyclesRun        *prometheus.CounterVec
	cycleFailures    *prometheus.CounterVec
	proposalsCreated prometheus.Counter
	needsSkipped     *prometheus.CounterVec
	needsFailed      prometheus.Counter
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, prometheus.Counter) {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_cycles_total",
		Help: "Number of tenant planning cycles started",
	}, []string{"trigger"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_cycle_failures_total",
		Help: "Number of tenant planning cycles that failed",
	}, []string{"trigger", "kind"})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crewplan_proposals_created_total",
		Help: "Number of pending proposals written",
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_needs_skipped_total",
		Help: "Number of relief needs that ended without a new proposal",
	}, []string{"reason"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crewplan_needs_failed_total",
		Help: "Number of relief needs that failed",
	})
	return runs, failures, created, skipped, failed
}

func init() {
	cyclesRun, cycleFailures, proposalsCreated, needsSkipped, needsFailed = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planning metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cyclesRun, cycleFailures, proposalsCreated, needsSkipped, needsFailed)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	cyclesRun, cycleFailures, proposalsCreated, needsSkipped, needsFailed = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeOutcome(o NeedOutcome) {
	switch o.Status {
	case NeedCreated:
		proposalsCreated.Inc()
	case NeedSkipped:
		needsSkipped.WithLabelValues(o.Reason).Inc()
	case NeedDuplicate:
		needsSkipped.WithLabelValues("duplicate").Inc()
	case NeedFailed:
		needsFailed.Inc()
	}
}
