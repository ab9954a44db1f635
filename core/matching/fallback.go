package matching

import "github.com/kilianp07/crewplan/core/model"

const (
	fallbackExactRank = 80
	fallbackOtherRank = 50

	// ManualReviewRisk is always listed among the risks of a fallback result.
	ManualReviewRisk = "Manual review recommended"
	// FallbackReasoning prefixes the reasoning of a fallback result.
	FallbackReasoning = "Fallback heuristic"
)

// Fallback scores c against need without the provider: 80 for an exact rank
// match, 50 otherwise.
func Fallback(need model.ReliefNeed, c model.CandidateProfile) model.MatchResult {
	score := fallbackOtherRank
	reasoning := FallbackReasoning + ": rank differs from the required rank"
	strengths := []string{}
	if c.Rank == need.Rank {
		score = fallbackExactRank
		reasoning = FallbackReasoning + ": rank matches the required rank"
		strengths = append(strengths, "Holds the required rank "+need.Rank)
	}
	if c.Status.IsAvailable() {
		strengths = append(strengths, "Currently "+string(c.Status))
	}
	return model.MatchResult{
		Candidate: c,
		Score:     score,
		Reasoning: reasoning,
		Strengths: strengths,
		Risks:     []string{"Reasoning provider unavailable", ManualReviewRisk},
		Fallback:  true,
	}
}
