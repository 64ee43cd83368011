package providers

import (
	"context"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/extensionhost/authbroker/authentication"
	"github.com/extensionhost/authbroker/events"
)

var _ authentication.Provider = (*OIDCProvider)(nil)

// OpenURLFunc hands the authorization URL to the host, which directs the
// user agent to it (browser, embedded webview).
type OpenURLFunc func(authorizationURL string)

// OIDCProvider adapts a real OIDC issuer to the broker's provider interface.
// CreateSession runs the authorization-code flow: it hands the authorization
// URL to the host and blocks until the host delivers the redirect code via
// CompleteAuthorization, or the context is cancelled.
type OIDCProvider struct {
	config   oauth2.Config
	verifier *oidc.IDTokenVerifier
	openURL  OpenURLFunc

	mu       sync.Mutex
	sessions []authentication.Session
	pending  map[string]chan string // state -> authorization code
	changes  *events.Emitter[struct{}]
}

// NewOIDCProvider discovers the issuer's endpoints and builds the adapter.
func NewOIDCProvider(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string, openURL OpenURLFunc) (*OIDCProvider, error) {
	if openURL == nil {
		return nil, errors.New("[NewOIDCProvider] openURL is required")
	}

	issuer, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "[NewOIDCProvider] oidc.NewProvider")
	}

	return &OIDCProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     issuer.Endpoint(),
			RedirectURL:  redirectURL,
		},
		verifier: issuer.Verifier(&oidc.Config{ClientID: clientID}),
		openURL:  openURL,
		pending:  make(map[string]chan string),
		changes:  events.NewEmitter[struct{}](),
	}, nil
}

// GetSessions returns every session established so far. The scope filter is
// not applied: scopes were negotiated with the issuer at sign-in time.
func (p *OIDCProvider) GetSessions(_ context.Context, _ []string) ([]authentication.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]authentication.Session, len(p.sessions))
	copy(out, p.sessions)
	return out, nil
}

// CreateSession runs one authorization-code exchange. The requested scopes
// are sent alongside openid.
func (p *OIDCProvider) CreateSession(ctx context.Context, scopes []string) (authentication.Session, error) {
	state := uuid.New().String()
	codeCh := make(chan string, 1)

	p.mu.Lock()
	p.pending[state] = codeCh
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, state)
		p.mu.Unlock()
	}()

	config := p.config
	config.Scopes = append([]string{oidc.ScopeOpenID}, scopes...)
	p.openURL(config.AuthCodeURL(state))

	var code string
	select {
	case code = <-codeCh:
	case <-ctx.Done():
		return authentication.Session{}, errors.Wrap(ctx.Err(), "[CreateSession] waiting for authorization code")
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return authentication.Session{}, errors.Wrap(err, "[CreateSession] config.Exchange")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return authentication.Session{}, errors.New("[CreateSession] token response is missing id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return authentication.Session{}, errors.Wrap(err, "[CreateSession] verifier.Verify")
	}

	var claims struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return authentication.Session{}, errors.Wrap(err, "[CreateSession] idToken.Claims")
	}

	label := claims.Name
	if label == "" {
		label = claims.Email
	}

	session := authentication.Session{
		ID:          uuid.New().String(),
		AccessToken: token.AccessToken,
		Account:     authentication.Account{ID: idToken.Subject, Label: label},
	}

	p.mu.Lock()
	p.sessions = append(p.sessions, session)
	p.mu.Unlock()

	p.changes.Emit(struct{}{})
	return session, nil
}

// CompleteAuthorization delivers the code from the issuer's redirect back to
// the CreateSession call that opened the flow identified by state.
func (p *OIDCProvider) CompleteAuthorization(state, code string) error {
	p.mu.Lock()
	codeCh, ok := p.pending[state]
	p.mu.Unlock()

	if !ok {
		return errors.Errorf("[CompleteAuthorization] no pending authorization for state %q", state)
	}
	codeCh <- code
	return nil
}

// RemoveSession drops a session. The issuer-side grant is not revoked.
func (p *OIDCProvider) RemoveSession(_ context.Context, sessionID string) error {
	p.mu.Lock()
	kept := p.sessions[:0]
	for _, session := range p.sessions {
		if session.ID != sessionID {
			kept = append(kept, session)
		}
	}
	p.sessions = kept
	p.mu.Unlock()

	p.changes.Emit(struct{}{})
	return nil
}

func (p *OIDCProvider) OnDidChangeSessions(handler func()) events.Disposable {
	return p.changes.Subscribe(func(struct{}) { handler() })
}
