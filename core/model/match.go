package model

const (
	MinScore = 0
	MaxScore = 100
)

// MatchResult is the transient outcome of scoring one candidate against one
// relief need.
type MatchResult struct {
	Candidate CandidateProfile `json:"candidate"`
	Score     int              `json:"score"`
	Reasoning string           `json:"reasoning"`
	Strengths []string         `json:"strengths"`
	Risks     []string         `json:"risks"`
	// Fallback is set when the local heuristic produced the result.
	Fallback bool `json:"fallback"`
}

// ClampScore bounds s to [MinScore, MaxScore].
func ClampScore(s int) int {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}
