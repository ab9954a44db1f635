package metrics

import "time"

// CycleRecord summarizes one tenant planning cycle.
type CycleRecord struct {
	TenantID         string
	StartedAt        time.Time
	FinishedAt       time.Time
	NeedsProcessed   int
	ProposalsCreated int
	NeedsSkipped     int
	NeedsDuplicate   int
	NeedsFailed      int
	FallbackScores   int
	MeanTopScore     float64
	// Failed is set when the cycle aborted before processing its needs.
	Failed bool
}

// Duration returns the wall time of the cycle.
func (r CycleRecord) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// MetricsSink records cycle outcomes for observability purposes.
type MetricsSink interface {
	RecordCycle(rec CycleRecord) error
}

// ProposalRecord describes a written proposal.
type ProposalRecord struct {
	TenantID   string
	ProposalID string
	VesselID   string
	Score      int
	Fallback   bool
	Time       time.Time
}

// ProposalRecorder is implemented by sinks able to record single proposals.
type ProposalRecorder interface {
	RecordProposal(rec ProposalRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCycle(CycleRecord) error       { return nil }
func (NopSink) RecordProposal(ProposalRecord) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the record to all sinks, returning the first error
// encountered. Every sink is called.
func (m *MultiSink) RecordCycle(rec CycleRecord) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordCycle(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordProposal forwards proposals to the sinks that support them.
func (m *MultiSink) RecordProposal(rec ProposalRecord) error {
	var first error
	for _, s := range m.Sinks {
		if pr, ok := s.(ProposalRecorder); ok {
			if err := pr.RecordProposal(rec); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
