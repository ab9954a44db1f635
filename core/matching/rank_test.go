package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/core/model"
)

func result(id string, score int) model.MatchResult {
	return model.MatchResult{Candidate: model.CandidateProfile{CrewID: id}, Score: score}
}

func ids(rs []model.MatchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Candidate.CrewID
	}
	return out
}

func TestSelect_DeterministicRanking(t *testing.T) {
	results := []model.MatchResult{result("A", 90), result("B", 75), result("C", 90), result("D", 60)}
	sel := Select(results, 70)
	require.NotNil(t, sel.Top)
	assert.Empty(t, sel.SkipReason)
	assert.Equal(t, "A", sel.Top.Candidate.CrewID)
	assert.Equal(t, []string{"C", "B"}, ids(sel.Alternatives))

	// same outcome regardless of input order
	shuffled := []model.MatchResult{results[3], results[2], results[1], results[0]}
	sel2 := Select(shuffled, 70)
	assert.Equal(t, "A", sel2.Top.Candidate.CrewID)
	assert.Equal(t, []string{"C", "B"}, ids(sel2.Alternatives))
}

func TestSelect_BelowMinimum(t *testing.T) {
	sel := Select([]model.MatchResult{result("A", 75), result("B", 60)}, 80)
	assert.Equal(t, SkipBelowMinimum, sel.SkipReason)
	require.NotNil(t, sel.Top)
	assert.Equal(t, 75, sel.Top.Score)
}

func TestSelect_EqualToMinimumPasses(t *testing.T) {
	sel := Select([]model.MatchResult{result("A", 80)}, 80)
	assert.Empty(t, sel.SkipReason)
	assert.Empty(t, sel.Alternatives)
}

func TestSelect_Empty(t *testing.T) {
	sel := Select(nil, 0)
	assert.Equal(t, SkipNoCandidates, sel.SkipReason)
	assert.Nil(t, sel.Top)
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	in := []model.MatchResult{result("B", 10), result("A", 20)}
	_ = Rank(in)
	assert.Equal(t, []string{"B", "A"}, ids(in))
}
