package matching

import (
	"context"
	"time"

	"github.com/kilianp07/crewplan/core/model"
)

// Provider evaluates a candidate against a relief need and returns the raw
// answer text. The answer is expected to carry a JSON object with the keys
// score, reasoning, strengths and risks, possibly wrapped in prose or a
// markdown code fence.
type Provider interface {
	Evaluate(ctx context.Context, req ScoreRequest) ([]byte, error)
}

// NeedContext is the relief need as presented to the provider.
type NeedContext struct {
	VesselName     string `json:"vessel_name"`
	Rank           string `json:"rank"`
	SignOnDate     string `json:"sign_on_date"`
	ContractMonths int    `json:"contract_months"`
}

// CandidateContext is the candidate as presented to the provider.
type CandidateContext struct {
	Name          string `json:"name"`
	Rank          string `json:"rank"`
	Nationality   string `json:"nationality"`
	Status        string `json:"status"`
	AvailableFrom string `json:"available_from,omitempty"`
}

// ScoreRequest is one evaluation handed to a Provider.
type ScoreRequest struct {
	TenantID    string           `json:"tenant_id"`
	NeedID      string           `json:"need_id"`
	CandidateID string           `json:"candidate_id"`
	Need        NeedContext      `json:"need"`
	Candidate   CandidateContext `json:"candidate"`
}

const dateLayout = "2006-01-02"

// NewScoreRequest builds the request for scoring c against need.
func NewScoreRequest(need model.ReliefNeed, c model.CandidateProfile) ScoreRequest {
	req := ScoreRequest{
		TenantID:    need.TenantID,
		NeedID:      need.AssignmentID,
		CandidateID: c.CrewID,
		Need: NeedContext{
			VesselName:     need.VesselName,
			Rank:           need.Rank,
			SignOnDate:     formatDate(need.SignOnDate),
			ContractMonths: need.ContractMonths,
		},
		Candidate: CandidateContext{
			Name:        c.FullName,
			Rank:        c.Rank,
			Nationality: c.Nationality,
			Status:      string(c.Status),
		},
	}
	if c.AvailableFrom != nil {
		req.Candidate.AvailableFrom = formatDate(*c.AvailableFrom)
	}
	return req
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
