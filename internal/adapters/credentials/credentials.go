// Package credentials issues bearer tokens for the push gateway
package credentials

import (
	"context"
	"strings"
	"sync"

	perr "dadhumor/internal/platform/errors"
	"dadhumor/internal/platform/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// MessagingScope is the oauth scope for the FCM HTTP v1 API
const MessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// Provider returns a bearer token for one dispatch run
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token, used for local runs and tests
type Static string

// Token returns the fixed token, or a config error when it is blank
func (s Static) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", perr.Configf("credentials: static token is empty")
	}
	return string(s), nil
}

// Google resolves application default credentials lazily and caches the token source
// Tokens are reused until expiry; a failed lookup is not cached so the next run retries
type Google struct {
	scopes []string
	find   func(ctx context.Context, scopes ...string) (*google.Credentials, error)

	mu sync.Mutex
	ts oauth2.TokenSource
}

// NewGoogle returns a provider over application default credentials
func NewGoogle(scopes ...string) *Google {
	if len(scopes) == 0 {
		scopes = []string{MessagingScope}
	}
	return &Google{scopes: scopes, find: google.FindDefaultCredentials}
}

func (g *Google) source(ctx context.Context) (oauth2.TokenSource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ts != nil {
		return g.ts, nil
	}
	// refreshes outlive the run that first asked
	creds, err := g.find(context.WithoutCancel(ctx), g.scopes...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "credentials: default credentials unavailable")
	}
	if creds == nil || creds.TokenSource == nil {
		return nil, perr.Configf("credentials: default credentials carry no token source")
	}
	g.ts = oauth2.ReuseTokenSource(nil, creds.TokenSource)
	logger.Named("credentials").Info().
		Str("project_id", creds.ProjectID).
		Strs("scopes", g.scopes).
		Msg("default credentials loaded")
	return g.ts, nil
}

// Token returns a valid access token
func (g *Google) Token(ctx context.Context) (string, error) {
	ts, err := g.source(ctx)
	if err != nil {
		return "", err
	}
	tok, err := ts.Token()
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeConfig, "credentials: token exchange failed")
	}
	if tok.AccessToken == "" {
		return "", perr.Configf("credentials: empty access token")
	}
	return tok.AccessToken, nil
}

var (
	defaultOnce sync.Once
	defaultSrc  *Google
)

// Default returns the process-wide Google provider, created on first use
func Default() *Google {
	defaultOnce.Do(func() { defaultSrc = NewGoogle(MessagingScope) })
	return defaultSrc
}
