package matching

import (
	"sort"

	"github.com/kilianp07/crewplan/core/model"
)

// Skip reasons reported by Select.
const (
	SkipNoCandidates = "no_candidates"
	SkipBelowMinimum = "below_min_score"
)

// Selection is the outcome of ranking a scored pool.
type Selection struct {
	Top          *model.MatchResult
	Alternatives []model.MatchResult
	// SkipReason is set when no proposal should be written.
	SkipReason string
}

// Rank returns results ordered by score descending, ties broken by
// candidate id ascending. The input is not modified.
func Rank(results []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Candidate.CrewID < out[j].Candidate.CrewID
	})
	return out
}

// Select ranks results and applies the minimum score gate. The runner-ups
// are kept as alternatives even when the gate rejects the top result.
func Select(results []model.MatchResult, minScore int) Selection {
	if len(results) == 0 {
		return Selection{SkipReason: SkipNoCandidates}
	}
	ranked := Rank(results)
	top := ranked[0]
	rest := ranked[1:]
	if len(rest) > model.MaxAlternatives {
		rest = rest[:model.MaxAlternatives]
	}
	sel := Selection{Top: &top, Alternatives: rest}
	if top.Score < minScore {
		sel.SkipReason = SkipBelowMinimum
	}
	return sel
}
