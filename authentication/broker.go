package authentication

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/extensionhost/authbroker/allowances"
	"github.com/extensionhost/authbroker/events"
	"github.com/extensionhost/authbroker/requests"
	"github.com/extensionhost/authbroker/usage"
)

// Repos holds all ledger dependencies for the Broker.
type Repos struct {
	Allowances allowances.Repo // Durable per-account access decisions
	Requests   requests.Repo   // Pending non-interactive session requests
	Usage      usage.Repo      // Which extension consumed which session
}

// registration is one live provider. changeSub must be disposed exactly once
// when the registration is torn down.
type registration struct {
	id        string
	label     string
	provider  Provider
	options   ProviderOptions
	changeSub events.Disposable
}

// Broker mediates extension access to authentication providers. It owns all
// mutable ledgers; construct one per host process and inject it everywhere so
// tests get clean isolation from fresh instances.
type Broker struct {
	repos  Repos
	prompt PromptGateway
	sink   NotificationSink
	log    zerolog.Logger

	mu             sync.Mutex
	registrations  map[string]*registration
	sessionChanges *events.Emitter[ProviderDescriptor]
}

// BrokerOption defines a function type to modify the Broker instance.
type BrokerOption func(*Broker)

// WithLogger overrides the default global logger.
func WithLogger(logger zerolog.Logger) BrokerOption {
	return func(b *Broker) {
		b.log = logger
	}
}

// NewBroker initializes a new Broker with required dependencies.
func NewBroker(repos Repos, prompt PromptGateway, sink NotificationSink, options ...BrokerOption) (*Broker, error) {
	if repos.Allowances == nil {
		return nil, errors.New("[NewBroker] Allowances repo is required")
	}
	if repos.Requests == nil {
		return nil, errors.New("[NewBroker] Requests repo is required")
	}
	if repos.Usage == nil {
		return nil, errors.New("[NewBroker] Usage repo is required")
	}
	if prompt == nil {
		return nil, errors.New("[NewBroker] prompt gateway is required")
	}
	if sink == nil {
		return nil, errors.New("[NewBroker] notification sink is required")
	}

	broker := &Broker{
		repos:          repos,
		prompt:         prompt,
		sink:           sink,
		log:            log.Logger,
		registrations:  make(map[string]*registration),
		sessionChanges: events.NewEmitter[ProviderDescriptor](),
	}

	for _, opt := range options {
		opt(broker)
	}

	return broker, nil
}

// RegisterAuthenticationProvider adds a provider under a unique id and wires
// its change stream through the broker. Disposing the returned handle
// unsubscribes, removes the registration and emits one final provider update.
// Allowances and usage records tied to the provider are intentionally
// retained across unregistration.
func (b *Broker) RegisterAuthenticationProvider(id, label string, provider Provider, options *ProviderOptions) (events.Disposable, error) {
	if provider == nil {
		return nil, errors.New("[RegisterAuthenticationProvider] provider is required")
	}

	reg := &registration{
		id:       id,
		label:    label,
		provider: provider,
		options:  ProviderOptions{SupportsMultipleAccounts: false},
	}
	if options != nil {
		reg.options = *options
	}

	b.mu.Lock()
	if _, exists := b.registrations[id]; exists {
		b.mu.Unlock()
		return nil, errors.Wrapf(ProviderRegisteredErr, "[RegisterAuthenticationProvider] %q", id)
	}
	b.registrations[id] = reg
	b.mu.Unlock()

	reg.changeSub = provider.OnDidChangeSessions(func() {
		b.sessionChanges.Emit(ProviderDescriptor{ID: id, Label: label})
		b.notifyProviderUpdate(id)
	})

	b.log.Debug().Str("provider", id).Msg("authentication provider registered")
	b.notifyProviderUpdate(id)

	return events.NewDisposeFunc(func() {
		reg.changeSub.Dispose()
		b.mu.Lock()
		delete(b.registrations, id)
		b.mu.Unlock()
		b.log.Debug().Str("provider", id).Msg("authentication provider unregistered")
		b.notifyProviderUpdate(id)
	}), nil
}

// OnDidChangeSessions subscribes to the broker-level sessions-changed event,
// fired whenever a registered provider reports its own sessions changed.
func (b *Broker) OnDidChangeSessions(handler func(ProviderDescriptor)) events.Disposable {
	return b.sessionChanges.Subscribe(handler)
}

// registration returns the live registration for id, or nil.
func (b *Broker) registration(id string) *registration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registrations[id]
}

// registrationSnapshot returns the live registrations sorted by id.
func (b *Broker) registrationSnapshot() []*registration {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := make([]*registration, 0, len(b.registrations))
	for _, reg := range b.registrations {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].id < regs[j].id })
	return regs
}

func (b *Broker) notifyProviderUpdate(id string) {
	b.sink.Send(ProviderUpdateChannel, ProviderUpdate{ID: id})
}
