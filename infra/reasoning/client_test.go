package reasoning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/auth"
	"github.com/kilianp07/crewplan/core/matching"
	"github.com/kilianp07/crewplan/core/model"
)

func request() matching.ScoreRequest {
	need := model.ReliefNeed{
		AssignmentID:   "as-1",
		TenantID:       "t1",
		VesselName:     "MV Aurora",
		Rank:           "Chief Officer",
		SignOnDate:     time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		ContractMonths: 4,
	}
	c := model.CandidateProfile{CrewID: "c1", FullName: "Ana Silva", Rank: "Chief Officer", Status: model.StatusOnShore}
	return matching.NewScoreRequest(need, c)
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestEvaluate_ReturnsContent(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completion("```json\n{\"score\": 88, \"reasoning\": \"good\"}\n```")))
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL + "/v1", Model: "m1", Auth: auth.Bearer("secret")}, nil)
	require.NoError(t, err)
	raw, err := c.Evaluate(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "m1", got.Model)
	assert.Zero(t, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "MV Aurora")
	assert.Contains(t, got.Messages[1].Content, "Ana Silva")

	a, err := matching.ParseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, 88, a.Score)
}

func TestEvaluate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = c.Evaluate(context.Background(), request())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestEvaluate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = c.Evaluate(context.Background(), request())
	assert.Error(t, err)
}

func TestEvaluate_OAuth2(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokens.Close()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(completion(`{"score": 70}`)))
	}))
	defer api.Close()

	c, err := NewClient(Config{URL: api.URL, Auth: auth.New("", auth.Conf{ClientID: "id", ClientSecret: "s", TokenURL: tokens.URL})}, nil)
	require.NoError(t, err)
	raw, err := c.Evaluate(context.Background(), request())
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 70}`, string(raw))
}

func TestEvaluate_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Evaluate(ctx, request())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}
