package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
)

// PromSink records per-tenant cycle outcomes in Prometheus metrics.
type PromSink struct {
	duration  *prometheus.HistogramVec
	proposals *prometheus.CounterVec
	needs     *prometheus.CounterVec
	meanScore *prometheus.GaugeVec
	lastRun   *prometheus.GaugeVec
}

// NewPromSink registers cycle metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewplan_tenant_cycle_duration_seconds",
		Help:    "Wall time of tenant planning cycles",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"tenant_id", "result"})
	proposals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_tenant_proposals_total",
		Help: "Proposals written per tenant",
	}, []string{"tenant_id", "fallback"})
	needs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_tenant_needs_total",
		Help: "Relief needs processed per tenant by outcome",
	}, []string{"tenant_id", "outcome"})
	meanScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewplan_tenant_mean_top_score",
		Help: "Mean top candidate score of the last cycle",
	}, []string{"tenant_id"})
	lastRun := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewplan_tenant_last_cycle_timestamp_seconds",
		Help: "Unix time the last cycle of the tenant finished",
	}, []string{"tenant_id"})

	var err error
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if proposals, err = register(reg, proposals); err != nil {
		return nil, err
	}
	if needs, err = register(reg, needs); err != nil {
		return nil, err
	}
	if meanScore, err = register(reg, meanScore); err != nil {
		return nil, err
	}
	if lastRun, err = register(reg, lastRun); err != nil {
		return nil, err
	}
	return &PromSink{duration: duration, proposals: proposals, needs: needs, meanScore: meanScore, lastRun: lastRun}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCycle updates the tenant series from rec.
func (s *PromSink) RecordCycle(rec coremetrics.CycleRecord) error {
	result := "ok"
	if rec.Failed {
		result = "failed"
	}
	s.duration.WithLabelValues(rec.TenantID, result).Observe(rec.Duration().Seconds())
	s.needs.WithLabelValues(rec.TenantID, "created").Add(float64(rec.ProposalsCreated))
	s.needs.WithLabelValues(rec.TenantID, "skipped").Add(float64(rec.NeedsSkipped))
	s.needs.WithLabelValues(rec.TenantID, "duplicate").Add(float64(rec.NeedsDuplicate))
	s.needs.WithLabelValues(rec.TenantID, "failed").Add(float64(rec.NeedsFailed))
	if !rec.Failed {
		s.meanScore.WithLabelValues(rec.TenantID).Set(rec.MeanTopScore)
	}
	s.lastRun.WithLabelValues(rec.TenantID).Set(float64(rec.FinishedAt.Unix()))
	return nil
}

// RecordProposal counts a written proposal.
func (s *PromSink) RecordProposal(rec coremetrics.ProposalRecord) error {
	fb := "false"
	if rec.Fallback {
		fb = "true"
	}
	s.proposals.WithLabelValues(rec.TenantID, fb).Inc()
	return nil
}
