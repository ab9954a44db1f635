package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/crewplan/core/model"
)

var errNoObject = errors.New("answer contains no JSON object")

// Assessment is the decoded provider answer.
type Assessment struct {
	Score     int
	Reasoning string
	Strengths []string
	Risks     []string
}

// ParseAssessment extracts the assessment from a provider answer. Code
// fences and surrounding prose are ignored. Individual fields that are
// missing or of the wrong type default to zero values; the score is clamped
// to [0,100]. An answer without a decodable JSON object is an error.
func ParseAssessment(raw []byte) (Assessment, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return Assessment{}, err
	}
	var fields map[string]any
	if err := json.Unmarshal(obj, &fields); err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Score:     model.ClampScore(toScore(fields["score"])),
		Reasoning: toString(fields["reasoning"]),
		Strengths: toStrings(fields["strengths"]),
		Risks:     toStrings(fields["risks"]),
	}, nil
}

func extractObject(raw []byte) ([]byte, error) {
	s := bytes.TrimSpace(raw)
	if bytes.HasPrefix(s, []byte("```")) {
		s = s[3:]
		if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		if end := bytes.LastIndex(s, []byte("```")); end >= 0 {
			s = s[:end]
		}
	}
	start := bytes.IndexByte(s, '{')
	end := bytes.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return nil, errNoObject
	}
	return s[start : end+1], nil
}

func toScore(v any) int {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return int(math.Round(math.Max(math.Min(n, model.MaxScore), model.MinScore)))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return toScore(f)
	default:
		return 0
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func isSyntaxError(err error) bool {
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	return errors.As(err, &se) || errors.As(err, &te)
}
