package proposal

import "github.com/prometheus/client_golang/prometheus"

var auditWriteFailures prometheus.Counter

func newCollectors() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crewplan_audit_write_failures_total",
		Help: "Number of audit entries that could not be written",
	})
}

func init() {
	auditWriteFailures = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers proposal metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(auditWriteFailures)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	auditWriteFailures = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
