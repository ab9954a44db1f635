// Package auth authorizes outgoing HTTP requests with a static bearer token
// or an OAuth2 client-credentials grant.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authorizer sets the credentials of an outgoing request.
type Authorizer interface {
	SetAuthHeader(ctx context.Context, r *http.Request) error
}

// Bearer sends a fixed API key.
type Bearer string

// SetAuthHeader implements Authorizer.
func (b Bearer) SetAuthHeader(_ context.Context, r *http.Request) error {
	if b == "" {
		return errors.New("empty api key")
	}
	r.Header.Set("Authorization", "Bearer "+string(b))
	return nil
}

// None leaves requests untouched.
type None struct{}

// SetAuthHeader implements Authorizer.
func (None) SetAuthHeader(context.Context, *http.Request) error { return nil }

// ClientCred caches a client-credentials token and refreshes it on expiry.
type ClientCred struct {
	conf  clientcredentials.Config
	mu    sync.Mutex
	token *oauth2.Token
}

func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{conf: conf.toOauth2Config()}
}

// Token returns a valid token, requesting a new one when the cached token
// is missing or expired.
func (c *ClientCred) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.token.Valid() {
		return c.token, nil
	}
	tok, err := c.conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return tok, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
func (c *ClientCred) Invalidate() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// SetAuthHeader implements Authorizer.
func (c *ClientCred) SetAuthHeader(ctx context.Context, r *http.Request) error {
	tok, err := c.Token(ctx)
	if err != nil {
		return err
	}
	tok.SetAuthHeader(r)
	return nil
}

// New picks the authorizer matching the configured credentials. OAuth2 wins
// over a static key.
func New(apiKey string, oauth Conf) Authorizer {
	switch {
	case oauth.Enabled():
		return NewClientCred(oauth)
	case apiKey != "":
		return Bearer(apiKey)
	default:
		return None{}
	}
}
