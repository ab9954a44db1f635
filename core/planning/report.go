package planning

import (
	"time"

	"gonum.org/v1/gonum/stat"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
)

// NeedStatus is the terminal state of one relief need within a cycle.
type NeedStatus string

const (
	NeedCreated   NeedStatus = "created"
	NeedSkipped   NeedStatus = "skipped"
	NeedDuplicate NeedStatus = "duplicate"
	NeedFailed    NeedStatus = "failed"
)

// NeedOutcome records what happened to one relief need.
type NeedOutcome struct {
	NeedID     string     `json:"need_id"`
	VesselID   string     `json:"vessel_id"`
	Rank       string     `json:"rank"`
	Status     NeedStatus `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	ProposalID string     `json:"proposal_id,omitempty"`
	// Score is the top candidate score, when candidates were scored.
	Score      *int   `json:"score,omitempty"`
	Candidates int    `json:"candidates"`
	Fallbacks  int    `json:"fallbacks"`
	Err        error  `json:"-"`
	Error      string `json:"error,omitempty"`
}

// CycleReport aggregates the outcomes of a tenant cycle.
type CycleReport struct {
	TenantID         string        `json:"tenant_id"`
	Trigger          Trigger       `json:"trigger"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       time.Time     `json:"finished_at"`
	NeedsProcessed   int           `json:"needs_processed"`
	ProposalsCreated int           `json:"proposals_created"`
	NeedsSkipped     int           `json:"needs_skipped"`
	NeedsDuplicate   int           `json:"needs_duplicate"`
	NeedsFailed      int           `json:"needs_failed"`
	FallbackScores   int           `json:"fallback_scores"`
	MeanTopScore     float64       `json:"mean_top_score"`
	Outcomes         []NeedOutcome `json:"outcomes"`
}

func (r *CycleReport) add(o NeedOutcome) {
	if o.Err != nil {
		o.Error = o.Err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
}

// summarize recomputes the counters from the outcomes.
func (r *CycleReport) summarize() {
	r.NeedsProcessed = len(r.Outcomes)
	r.ProposalsCreated, r.NeedsSkipped, r.NeedsDuplicate, r.NeedsFailed, r.FallbackScores = 0, 0, 0, 0, 0
	var tops []float64
	for _, o := range r.Outcomes {
		switch o.Status {
		case NeedCreated:
			r.ProposalsCreated++
		case NeedSkipped:
			r.NeedsSkipped++
		case NeedDuplicate:
			r.NeedsDuplicate++
		case NeedFailed:
			r.NeedsFailed++
		}
		r.FallbackScores += o.Fallbacks
		if o.Score != nil {
			tops = append(tops, float64(*o.Score))
		}
	}
	r.MeanTopScore = 0
	if len(tops) > 0 {
		r.MeanTopScore = stat.Mean(tops, nil)
	}
}

// Record converts the report for metrics sinks.
func (r CycleReport) Record(failed bool) coremetrics.CycleRecord {
	return coremetrics.CycleRecord{
		TenantID:         r.TenantID,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		NeedsProcessed:   r.NeedsProcessed,
		ProposalsCreated: r.ProposalsCreated,
		NeedsSkipped:     r.NeedsSkipped,
		NeedsDuplicate:   r.NeedsDuplicate,
		NeedsFailed:      r.NeedsFailed,
		FallbackScores:   r.FallbackScores,
		MeanTopScore:     r.MeanTopScore,
		Failed:           failed,
	}
}

// TenantFailure is a tenant whose cycle could not complete during RunAll.
type TenantFailure struct {
	TenantID string `json:"tenant_id"`
	Err      error  `json:"-"`
	Error    string `json:"error"`
}

// RunReport aggregates a RunAll invocation.
type RunReport struct {
	Trigger    Trigger         `json:"trigger"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Tenants    []CycleReport   `json:"tenants"`
	Failures   []TenantFailure `json:"failures"`
}

// ProposalsCreated sums the proposals created over all tenants.
func (r RunReport) ProposalsCreated() int {
	n := 0
	for _, t := range r.Tenants {
		n += t.ProposalsCreated
	}
	return n
}
