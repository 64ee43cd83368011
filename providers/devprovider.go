package providers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/extensionhost/authbroker/authentication"
	"github.com/extensionhost/authbroker/events"
)

const devTokenLifetime = time.Hour

var _ authentication.Provider = (*DevProvider)(nil)

// DevProvider is a self-contained authentication provider for demos and
// integration tests. It serves a single fixed account and mints HS256-signed
// JWTs carrying the granted scopes as access tokens.
type DevProvider struct {
	issuer  string
	secret  []byte
	account authentication.Account
	nowTime func() time.Time

	mu        sync.Mutex
	sessions  []authentication.Session
	scopeKeys map[string]string // session id -> granted scope key
	changes   *events.Emitter[struct{}]
}

// DevProviderOption defines a function type to modify the DevProvider instance.
type DevProviderOption func(*DevProvider)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) DevProviderOption {
	return func(p *DevProvider) {
		p.nowTime = nowFunc
	}
}

// NewDevProvider creates a provider that signs tokens with secret and stamps
// issuer into their claims.
func NewDevProvider(issuer string, secret []byte, account authentication.Account, options ...DevProviderOption) (*DevProvider, error) {
	if issuer == "" {
		return nil, errors.New("[NewDevProvider] issuer is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("[NewDevProvider] secret is required")
	}

	provider := &DevProvider{
		issuer:    issuer,
		secret:    secret,
		account:   account,
		nowTime:   time.Now,
		scopeKeys: make(map[string]string),
		changes:   events.NewEmitter[struct{}](),
	}

	for _, opt := range options {
		opt(provider)
	}

	return provider, nil
}

// GetSessions returns every session, or only those granted exactly the
// requested scope-set when a filter is given. Scopes arrive sorted.
func (p *DevProvider) GetSessions(_ context.Context, scopes []string) ([]authentication.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if scopes == nil {
		out := make([]authentication.Session, len(p.sessions))
		copy(out, p.sessions)
		return out, nil
	}

	key := strings.Join(scopes, " ")
	out := make([]authentication.Session, 0, len(p.sessions))
	for _, session := range p.sessions {
		if p.scopeKeys[session.ID] == key {
			out = append(out, session)
		}
	}
	return out, nil
}

// CreateSession mints a new session whose access token is a signed JWT with
// the granted scopes in its "scp" claim.
func (p *DevProvider) CreateSession(_ context.Context, scopes []string) (authentication.Session, error) {
	now := p.nowTime()
	id := ulid.Make().String()

	claims := jwt.MapClaims{
		"iss": p.issuer,
		"sub": p.account.ID,
		"scp": strings.Join(scopes, " "),
		"iat": now.Unix(),
		"exp": now.Add(devTokenLifetime).Unix(),
		"jti": id,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return authentication.Session{}, errors.Wrap(err, "[CreateSession] SignedString")
	}

	session := authentication.Session{
		ID:          id,
		AccessToken: accessToken,
		Account:     p.account,
	}

	p.mu.Lock()
	p.sessions = append(p.sessions, session)
	p.scopeKeys[id] = strings.Join(scopes, " ")
	p.mu.Unlock()

	p.changes.Emit(struct{}{})
	return session, nil
}

// RemoveSession drops a session. Removing an unknown id is a no-op.
func (p *DevProvider) RemoveSession(_ context.Context, sessionID string) error {
	p.mu.Lock()
	kept := p.sessions[:0]
	for _, session := range p.sessions {
		if session.ID != sessionID {
			kept = append(kept, session)
		}
	}
	p.sessions = kept
	delete(p.scopeKeys, sessionID)
	p.mu.Unlock()

	p.changes.Emit(struct{}{})
	return nil
}

func (p *DevProvider) OnDidChangeSessions(handler func()) events.Disposable {
	return p.changes.Subscribe(func(struct{}) { handler() })
}
