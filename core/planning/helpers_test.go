package planning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/crewplan/core/candidates"
	"github.com/kilianp07/crewplan/core/matching"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/proposal"
	"github.com/kilianp07/crewplan/core/relief"
	"github.com/kilianp07/crewplan/core/store"
)

var testNow = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

// scoreTable answers with a fixed score per candidate id; unknown ids fail.
type scoreTable map[string]int

func (s scoreTable) Evaluate(_ context.Context, req matching.ScoreRequest) ([]byte, error) {
	score, ok := s[req.CandidateID]
	if !ok {
		return nil, errors.New("provider unavailable")
	}
	return []byte(fmt.Sprintf(`{"score": %d, "reasoning": "table", "strengths": [], "risks": []}`, score)), nil
}

// failingReliefs fails reads for one tenant.
type failingReliefs struct {
	store.ReliefStore
	tenantID string
}

func (f failingReliefs) ActiveSigningOffBefore(ctx context.Context, tenantID string, cutoff time.Time) ([]model.ReliefNeed, error) {
	if tenantID == f.tenantID {
		return nil, errors.New("relation \"assignments\" does not exist")
	}
	return f.ReliefStore.ActiveSigningOffBefore(ctx, tenantID, cutoff)
}

func tenant(id string, minScore int) model.TenantConfig {
	return model.TenantConfig{
		TenantID:      id,
		Enabled:       true,
		AutonomyLevel: model.AutonomyAssisted,
		MinMatchScore: minScore,
		HorizonDays:   30,
		Features:      map[string]bool{model.FeatureReliefPlanning: true},
	}
}

func addNeed(s *store.MemoryStore, tenantID, id, rank string, days int) model.ReliefNeed {
	n := model.ReliefNeed{
		AssignmentID: id, TenantID: tenantID, VesselID: "vessel-" + id, VesselName: "MV " + id,
		Rank: rank, SignOnDate: testNow.AddDate(0, -5, 0), SignOffDate: testNow.AddDate(0, 0, days), ContractMonths: 6,
	}
	s.AddAssignment(n, true)
	return n
}

func addCrew(s *store.MemoryStore, tenantID, id, rank string) {
	s.AddCrew(model.CandidateProfile{CrewID: id, TenantID: tenantID, FullName: "Crew " + id, Rank: rank, Status: model.StatusOnShore})
}

func newCycle(t *testing.T, reliefs store.ReliefStore, s *store.MemoryStore, p matching.Provider) *Cycle {
	t.Helper()
	ResetMetrics(prometheus.NewRegistry())
	loc := relief.NewLocator(reliefs)
	loc.SetClock(func() time.Time { return testNow })
	res := candidates.NewResolver(s, nil, 0, nil)
	sc := matching.NewScorer(p, matching.ScorerConfig{Timeout: time.Second, MaxConcurrency: 2}, nil)
	w := proposal.NewWriter(s, s, nil, nil)
	c := NewCycle(loc, res, sc, w, nil)
	c.now = func() time.Time { return testNow }
	return c
}
