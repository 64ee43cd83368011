package authfakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/extensionhost/authbroker/authentication"
	"github.com/extensionhost/authbroker/events"
)

var _ authentication.Provider = (*FakeProvider)(nil)

// FakeProvider is an in-memory authentication provider for tests. Sessions
// created through CreateSession accumulate and are returned by later
// GetSessions calls; change events fire only via FireSessionChanges so tests
// control notification timing.
type FakeProvider struct {
	// Account is stamped onto every created session.
	Account authentication.Account

	// Error overrides. When set, the corresponding call fails.
	GetSessionsErr   error
	CreateSessionErr error
	RemoveSessionErr error

	mu          sync.Mutex
	sessions    []authentication.Session
	nextID      int
	createCalls [][]string
	removeCalls []string
	changes     *events.Emitter[struct{}]
}

// NewFakeProvider creates a provider pre-seeded with the given sessions.
func NewFakeProvider(sessions ...authentication.Session) *FakeProvider {
	return &FakeProvider{
		Account:  authentication.Account{ID: "account-1", Label: "Account 1"},
		sessions: sessions,
		changes:  events.NewEmitter[struct{}](),
	}
}

func (p *FakeProvider) GetSessions(_ context.Context, _ []string) ([]authentication.Session, error) {
	if p.GetSessionsErr != nil {
		return nil, p.GetSessionsErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]authentication.Session, len(p.sessions))
	copy(out, p.sessions)
	return out, nil
}

func (p *FakeProvider) CreateSession(_ context.Context, scopes []string) (authentication.Session, error) {
	if p.CreateSessionErr != nil {
		return authentication.Session{}, p.CreateSessionErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	session := authentication.Session{
		ID:          fmt.Sprintf("session-%d", p.nextID),
		AccessToken: fmt.Sprintf("token-%d", p.nextID),
		Account:     p.Account,
	}
	p.sessions = append(p.sessions, session)
	p.createCalls = append(p.createCalls, append([]string(nil), scopes...))
	return session, nil
}

func (p *FakeProvider) RemoveSession(_ context.Context, sessionID string) error {
	if p.RemoveSessionErr != nil {
		return p.RemoveSessionErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.sessions[:0]
	for _, session := range p.sessions {
		if session.ID != sessionID {
			kept = append(kept, session)
		}
	}
	p.sessions = kept
	p.removeCalls = append(p.removeCalls, sessionID)
	return nil
}

func (p *FakeProvider) OnDidChangeSessions(handler func()) events.Disposable {
	return p.changes.Subscribe(func(struct{}) { handler() })
}

// FireSessionChanges triggers the provider's change stream.
func (p *FakeProvider) FireSessionChanges() {
	p.changes.Emit(struct{}{})
}

// SetSessions replaces the session list.
func (p *FakeProvider) SetSessions(sessions ...authentication.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = sessions
}

// CreateCalls returns the scope list of every CreateSession call.
func (p *FakeProvider) CreateCalls() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]string(nil), p.createCalls...)
}

// RemoveCalls returns the session ids passed to RemoveSession.
func (p *FakeProvider) RemoveCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.removeCalls...)
}

// ChangeSubscriberCount reports live change-stream subscriptions, for leak
// checks across register/unregister cycles.
func (p *FakeProvider) ChangeSubscriberCount() int {
	return p.changes.Len()
}
