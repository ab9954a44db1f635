// Package reasoning implements matching.Provider over an OpenAI-compatible
// chat completions endpoint.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/crewplan/auth"
	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/matching"
)

const (
	DefaultModel = "gpt-4o-mini"
	// maxResponseBytes caps the body read from the provider.
	maxResponseBytes = 1 << 20
)

// Config configures a Client.
type Config struct {
	URL    string
	Model  string
	Auth   auth.Authorizer
	Client *http.Client
}

// Client calls the chat completions API.
type Client struct {
	endpoint string
	model    string
	auth     auth.Authorizer
	http     *http.Client
	log      logger.Logger
}

// NewClient creates a Client. URL is the API base; "/chat/completions" is
// appended when missing.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("reasoning url is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Auth == nil {
		cfg.Auth = auth.None{}
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	endpoint := strings.TrimRight(cfg.URL, "/")
	if !strings.HasSuffix(endpoint, "/chat/completions") {
		endpoint += "/chat/completions"
	}
	return &Client{endpoint: endpoint, model: cfg.Model, auth: cfg.Auth, http: cfg.Client, log: log}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// StatusError reports a non-2xx answer from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reasoning provider returned %d: %s", e.Code, e.Body)
}

// Evaluate implements matching.Provider.
func (c *Client) Evaluate(ctx context.Context, req matching.ScoreRequest) ([]byte, error) {
	prompt, err := Prompt(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.auth.SetAuthHeader(ctx, httpReq); err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if cc, ok := c.auth.(*auth.ClientCred); ok {
			cc.Invalidate()
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), 256)}
	}
	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("reasoning provider: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("reasoning provider returned no choices")
	}
	c.log.Debugw("candidate evaluated", map[string]any{
		"tenant_id":    req.TenantID,
		"need_id":      req.NeedID,
		"candidate_id": req.CandidateID,
	})
	return []byte(out.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
