package events

import "time"

// ProposalCreated is published after a proposal and its audit entry were
// written.
type ProposalCreated struct {
	ProposalID   string    `json:"proposal_id"`
	TenantID     string    `json:"tenant_id"`
	ReliefNeedID string    `json:"relief_need_id"`
	VesselID     string    `json:"vessel_id"`
	CandidateID  string    `json:"candidate_id"`
	Score        int       `json:"score"`
	Fallback     bool      `json:"fallback"`
	Alternatives int       `json:"alternatives"`
	CreatedAt    time.Time `json:"created_at"`
}

// CycleCompleted is published when a tenant planning cycle returns.
type CycleCompleted struct {
	TenantID         string        `json:"tenant_id"`
	NeedsProcessed   int           `json:"needs_processed"`
	ProposalsCreated int           `json:"proposals_created"`
	NeedsFailed      int           `json:"needs_failed"`
	Duration         time.Duration `json:"duration_ns"`
	Err              string        `json:"error,omitempty"`
	FinishedAt       time.Time     `json:"finished_at"`
}

// Key returns the routing key used by external brokers.
func (e ProposalCreated) Key() string { return e.TenantID + "/" + e.ReliefNeedID }

// Key returns the routing key used by external brokers.
func (e CycleCompleted) Key() string { return e.TenantID }
