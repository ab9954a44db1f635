// Package proposal persists assignment proposals and their audit trail.
package proposal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/crewplan/core/events"
	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/matching"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/store"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// Result of a Write call.
type Result int

const (
	Created Result = iota
	Duplicate
)

func (r Result) String() string {
	if r == Created {
		return "created"
	}
	return "duplicate"
}

// ProposalWriteError reports a failed proposal persistence.
type ProposalWriteError struct {
	NeedID string
	Err    error
}

func (e *ProposalWriteError) Error() string {
	return fmt.Sprintf("write proposal for relief need %s: %v", e.NeedID, e.Err)
}

func (e *ProposalWriteError) Unwrap() error { return e.Err }

// IsDuplicate reports whether err is a lost race against another pending
// proposal for the same need.
func IsDuplicate(err error) bool { return errors.Is(err, store.ErrDuplicatePending) }

// Writer writes proposals.
type Writer struct {
	proposals store.ProposalStore
	audit     store.AuditStore
	bus       *eventbus.TypedBus[events.ProposalCreated]
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewWriter creates a Writer. bus may be nil.
func NewWriter(p store.ProposalStore, a store.AuditStore, bus *eventbus.TypedBus[events.ProposalCreated], log logger.Logger) *Writer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Writer{
		proposals: p,
		audit:     a,
		bus:       bus,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetClock overrides the time source.
func (w *Writer) SetClock(now func() time.Time) { w.now = now }

// Write persists a pending proposal for need recommending sel.Top. When a
// pending proposal already exists it returns Duplicate and the existing
// proposal is left untouched. A race lost on insert is reported as a
// *ProposalWriteError wrapping store.ErrDuplicatePending.
func (w *Writer) Write(ctx context.Context, need model.ReliefNeed, sel matching.Selection) (model.Proposal, Result, error) {
	if sel.Top == nil {
		return model.Proposal{}, Duplicate, &ProposalWriteError{NeedID: need.AssignmentID, Err: errors.New("no recommended candidate")}
	}
	pending, err := w.proposals.HasPending(ctx, need.AssignmentID)
	if err != nil {
		return model.Proposal{}, Duplicate, &ProposalWriteError{NeedID: need.AssignmentID, Err: fmt.Errorf("check pending: %w", err)}
	}
	if pending {
		w.log.Debugf("pending proposal exists for relief need %s", need.AssignmentID)
		return model.Proposal{}, Duplicate, nil
	}

	p := Build(need, sel, w.newID(), w.now().UTC())
	if err := w.proposals.Insert(ctx, p); err != nil {
		return model.Proposal{}, Duplicate, &ProposalWriteError{NeedID: need.AssignmentID, Err: err}
	}

	w.appendAudit(ctx, p)
	if w.bus != nil {
		w.bus.Publish(events.ProposalCreated{
			ProposalID:   p.ID,
			TenantID:     p.TenantID,
			ReliefNeedID: p.ReliefNeedID,
			VesselID:     p.VesselID,
			CandidateID:  p.CandidateID,
			Score:        p.Score,
			Fallback:     p.Payload.Fallback,
			Alternatives: len(p.Payload.Alternatives),
			CreatedAt:    p.CreatedAt,
		})
	}
	return p, Created, nil
}

func (w *Writer) appendAudit(ctx context.Context, p model.Proposal) {
	if w.audit == nil {
		return
	}
	entry := model.AuditLogEntry{
		ID:         w.newID(),
		TenantID:   p.TenantID,
		Action:     model.AuditActionProposalCreated,
		EntityType: model.AuditEntityProposal,
		EntityID:   p.ID,
		Details: map[string]any{
			"relief_need_id": p.ReliefNeedID,
			"vessel_id":      p.VesselID,
			"candidate_id":   p.CandidateID,
			"score":          p.Score,
			"alternatives":   len(p.Payload.Alternatives),
			"fallback":       p.Payload.Fallback,
		},
		CreatedAt: p.CreatedAt,
	}
	if err := w.audit.Append(ctx, entry); err != nil {
		auditWriteFailures.Inc()
		w.log.Warnw("audit entry not written", map[string]any{
			"tenant_id":   p.TenantID,
			"proposal_id": p.ID,
			"error":       err.Error(),
		})
	}
}

// Build assembles the proposal for need from a selection with a top result.
func Build(need model.ReliefNeed, sel matching.Selection, id string, at time.Time) model.Proposal {
	top := sel.Top
	alts := make([]model.Alternative, 0, len(sel.Alternatives))
	for _, a := range sel.Alternatives {
		alts = append(alts, model.Alternative{
			CandidateID: a.Candidate.CrewID,
			Name:        a.Candidate.FullName,
			Score:       a.Score,
			Reasoning:   a.Reasoning,
		})
	}
	return model.Proposal{
		ID:           id,
		TenantID:     need.TenantID,
		ReliefNeedID: need.AssignmentID,
		VesselID:     need.VesselID,
		CandidateID:  top.Candidate.CrewID,
		Score:        top.Score,
		Payload: model.ProposalPayload{
			CandidateName: top.Candidate.FullName,
			Reasoning:     top.Reasoning,
			Strengths:     top.Strengths,
			Risks:         top.Risks,
			Fallback:      top.Fallback,
			Alternatives:  alts,
		},
		Status:    model.ProposalPendingReview,
		CreatedAt: at,
	}
}
