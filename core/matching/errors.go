package matching

import "fmt"

// ScoringError reports a failed evaluation of one candidate. It never
// leaves the Scorer; the candidate is scored by the fallback instead.
type ScoringError struct {
	CandidateID string
	Err         error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("score candidate %s: %v", e.CandidateID, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }
