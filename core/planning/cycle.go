package planning

import (
	"context"
	"time"

	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/matching"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/proposal"
)

// NeedLocator finds the relief needs of a tenant.
type NeedLocator interface {
	Due(ctx context.Context, t model.TenantConfig) ([]model.ReliefNeed, error)
}

// CandidateResolver resolves the candidate pool for a rank.
type CandidateResolver interface {
	Resolve(ctx context.Context, tenantID, rank string) ([]model.CandidateProfile, error)
}

// MatchScorer scores a candidate pool.
type MatchScorer interface {
	ScoreAll(ctx context.Context, need model.ReliefNeed, pool []model.CandidateProfile) []model.MatchResult
}

// ProposalWriter persists a selection.
type ProposalWriter interface {
	Write(ctx context.Context, need model.ReliefNeed, sel matching.Selection) (model.Proposal, proposal.Result, error)
}

// Cycle runs the planning pipeline for one tenant.
type Cycle struct {
	locator  NeedLocator
	resolver CandidateResolver
	scorer   MatchScorer
	writer   ProposalWriter
	log      logger.Logger
	now      func() time.Time
}

// NewCycle assembles a Cycle.
func NewCycle(l NeedLocator, r CandidateResolver, s MatchScorer, w ProposalWriter, log logger.Logger) *Cycle {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Cycle{locator: l, resolver: r, scorer: s, writer: w, log: log, now: time.Now}
}

// Run processes every due need of the tenant. The error is non-nil only
// when the needs could not be located or ctx was canceled; the report is
// always usable.
func (c *Cycle) Run(ctx context.Context, t model.TenantConfig) (CycleReport, error) {
	report := CycleReport{TenantID: t.TenantID, StartedAt: c.now().UTC(), Outcomes: []NeedOutcome{}}
	err := c.run(ctx, t, &report)
	report.summarize()
	report.FinishedAt = c.now().UTC()
	return report, err
}

func (c *Cycle) run(ctx context.Context, t model.TenantConfig, report *CycleReport) error {
	needs, err := c.locator.Due(ctx, t)
	if err != nil {
		return err
	}
	c.log.Infof("tenant %s: %d relief needs within %d days", t.TenantID, len(needs), t.HorizonDays)

	for _, need := range needs {
		if err := ctx.Err(); err != nil {
			return err
		}
		o := c.processNeed(ctx, t, need)
		observeOutcome(o)
		report.add(o)
	}
	return nil
}

func (c *Cycle) processNeed(ctx context.Context, t model.TenantConfig, need model.ReliefNeed) NeedOutcome {
	o := NeedOutcome{NeedID: need.AssignmentID, VesselID: need.VesselID, Rank: need.Rank}

	pool, err := c.resolver.Resolve(ctx, t.TenantID, need.Rank)
	if err != nil {
		c.log.Errorf("tenant %s need %s: %v", t.TenantID, need.AssignmentID, err)
		o.Status, o.Reason, o.Err = NeedFailed, "candidates", err
		return o
	}
	o.Candidates = len(pool)
	if len(pool) == 0 {
		o.Status, o.Reason = NeedSkipped, matching.SkipNoCandidates
		return o
	}

	results := c.scorer.ScoreAll(ctx, need, pool)
	for _, r := range results {
		if r.Fallback {
			o.Fallbacks++
		}
	}
	sel := matching.Select(results, t.MinMatchScore)
	if sel.Top != nil {
		score := sel.Top.Score
		o.Score = &score
	}
	if sel.SkipReason != "" {
		o.Status, o.Reason = NeedSkipped, sel.SkipReason
		if sel.SkipReason == matching.SkipBelowMinimum {
			c.log.Warnw("best candidate below minimum score", map[string]any{
				"tenant_id":    t.TenantID,
				"need_id":      need.AssignmentID,
				"candidate_id": sel.Top.Candidate.CrewID,
				"score":        sel.Top.Score,
				"min_score":    t.MinMatchScore,
			})
		}
		return o
	}

	p, res, err := c.writer.Write(ctx, need, sel)
	switch {
	case err != nil && proposal.IsDuplicate(err):
		o.Status, o.Reason = NeedDuplicate, "pending proposal created concurrently"
	case err != nil:
		c.log.Errorf("tenant %s need %s: %v", t.TenantID, need.AssignmentID, err)
		o.Status, o.Reason, o.Err = NeedFailed, "write", err
	case res == proposal.Duplicate:
		o.Status, o.Reason = NeedDuplicate, "pending proposal exists"
	default:
		o.Status, o.ProposalID = NeedCreated, p.ID
		c.log.Infof("tenant %s need %s: proposed %s (score %d)", t.TenantID, need.AssignmentID, p.CandidateID, p.Score)
	}
	return o
}
