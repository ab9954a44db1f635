package matching

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/model"
)

const (
	DefaultTimeout        = 20 * time.Second
	DefaultMaxConcurrency = 4
)

// ScorerConfig bounds provider usage.
type ScorerConfig struct {
	Timeout        time.Duration
	MaxConcurrency int
}

// Scorer evaluates candidate pools.
type Scorer struct {
	provider Provider
	cfg      ScorerConfig
	log      logger.Logger
}

// NewScorer creates a Scorer. A nil provider scores every candidate with the
// fallback heuristic.
func NewScorer(p Provider, cfg ScorerConfig, log logger.Logger) *Scorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scorer{provider: p, cfg: cfg, log: log}
}

// ScoreAll scores every candidate of pool against need. The returned slice
// has one result per candidate in pool order. It never fails: individual
// failures are replaced by Fallback.
func (s *Scorer) ScoreAll(ctx context.Context, need model.ReliefNeed, pool []model.CandidateProfile) []model.MatchResult {
	results := make([]model.MatchResult, len(pool))
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, c := range pool {
		i, c := i, c
		g.Go(func() error {
			results[i] = s.Score(ctx, need, c)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Score evaluates one candidate.
func (s *Scorer) Score(ctx context.Context, need model.ReliefNeed, c model.CandidateProfile) model.MatchResult {
	if s.provider == nil {
		scoringFallbacks.WithLabelValues("no_provider").Inc()
		return Fallback(need, c)
	}
	a, err := s.evaluate(ctx, need, c)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		} else if errors.Is(err, errNoObject) || isSyntaxError(err) {
			reason = "unparsable"
		}
		scoringCalls.WithLabelValues("failed").Inc()
		scoringFallbacks.WithLabelValues(reason).Inc()
		s.log.Warnw("candidate scored by fallback", map[string]any{
			"tenant_id":    need.TenantID,
			"need_id":      need.AssignmentID,
			"candidate_id": c.CrewID,
			"reason":       reason,
			"error":        err.Error(),
		})
		return Fallback(need, c)
	}
	scoringCalls.WithLabelValues("ok").Inc()
	return model.MatchResult{
		Candidate: c,
		Score:     a.Score,
		Reasoning: a.Reasoning,
		Strengths: a.Strengths,
		Risks:     a.Risks,
	}
}

func (s *Scorer) evaluate(ctx context.Context, need model.ReliefNeed, c model.CandidateProfile) (Assessment, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	start := time.Now()
	raw, err := s.provider.Evaluate(callCtx, NewScoreRequest(need, c))
	scoringLatency.Observe(time.Since(start).Seconds())
	if err == nil {
		err = callCtx.Err()
	}
	if err != nil {
		return Assessment{}, &ScoringError{CandidateID: c.CrewID, Err: err}
	}
	a, err := ParseAssessment(raw)
	if err != nil {
		return Assessment{}, &ScoringError{CandidateID: c.CrewID, Err: err}
	}
	return a, nil
}
