package model

import "time"

// ProposalStatus is the review state of a proposal. Only PendingReview is
// created by the engine; the other states are set by reviewers.
type ProposalStatus string

const (
	ProposalPendingReview ProposalStatus = "pending_review"
	ProposalApproved      ProposalStatus = "approved"
	ProposalRejected      ProposalStatus = "rejected"
)

// MaxAlternatives bounds the runner-up candidates kept in a proposal payload.
const MaxAlternatives = 2

// Alternative is a runner-up candidate recorded next to the recommendation.
type Alternative struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Reasoning   string `json:"reasoning"`
}

// ProposalPayload is the full reasoning stored with a proposal.
type ProposalPayload struct {
	CandidateName string        `json:"candidate_name"`
	Reasoning     string        `json:"reasoning"`
	Strengths     []string      `json:"strengths"`
	Risks         []string      `json:"risks"`
	Fallback      bool          `json:"fallback"`
	Alternatives  []Alternative `json:"alternatives"`
}

// Proposal is a persisted recommendation pairing a relief need with its top
// candidate. At most one pending proposal exists per relief need.
type Proposal struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	ReliefNeedID string          `json:"relief_need_id"`
	VesselID     string          `json:"vessel_id"`
	CandidateID  string          `json:"candidate_id"`
	Score        int             `json:"score"`
	Payload      ProposalPayload `json:"payload"`
	Status       ProposalStatus  `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

const (
	AuditActionProposalCreated = "proposal.created"
	AuditEntityProposal        = "proposal"
)

// AuditLogEntry is an append-only record of an engine decision.
type AuditLogEntry struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
