package reasoning

import (
	"encoding/json"
	"strings"

	"github.com/kilianp07/crewplan/core/matching"
)

const systemPrompt = "You are a maritime crew planner. You assess whether a seafarer is a good " +
	"relief for an upcoming vacancy on board. Answer with a single JSON object only."

// Prompt renders the user message for req.
func Prompt(req matching.ScoreRequest) (string, error) {
	need, err := json.MarshalIndent(req.Need, "", "  ")
	if err != nil {
		return "", err
	}
	cand, err := json.MarshalIndent(req.Candidate, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Vacancy:\n")
	b.Write(need)
	b.WriteString("\n\nCandidate:\n")
	b.Write(cand)
	b.WriteString("\n\nScore the fit from 0 to 100 considering rank match, availability before the sign-on date and contract length.\n")
	b.WriteString(`Respond as {"score": <0-100>, "reasoning": "<short text>", "strengths": ["..."], "risks": ["..."]}`)
	return b.String(), nil
}
