package authentication

import (
	"context"

	"github.com/extensionhost/authbroker/events"
	"github.com/extensionhost/authbroker/requests"
)

// Account identifies one identity within a provider.
type Account struct {
	ID    string
	Label string
}

// Session is the opaque credential bundle a provider hands out. The broker
// only reads it; the provider owns its lifecycle.
type Session struct {
	ID          string
	AccessToken string
	Account     Account
}

// ExtensionDescriptor identifies the extension asking for a session.
type ExtensionDescriptor struct {
	ID    string
	Label string
}

// SessionOptions modify GetSession behaviour. ForceNewSession and
// ClearSessionPreference are not supported and fail fast.
type SessionOptions struct {
	CreateIfNone           bool
	Silent                 bool
	ClearSessionPreference bool
	ForceNewSession        bool
}

// ProviderImages holds optional display icons for a provider.
type ProviderImages struct {
	Light string
	Dark  string
}

// ProviderOptions describe a provider's capabilities at registration time.
// SupportsMultipleAccounts is informative only: the broker always treats the
// first session a provider returns as canonical.
type ProviderOptions struct {
	SupportsMultipleAccounts bool
	Images                   *ProviderImages
}

// ProviderDescriptor is the payload of the broker-level sessions-changed
// event.
type ProviderDescriptor struct {
	ID    string
	Label string
}

// Provider is the external authentication plugin the broker mediates access
// to. Implementations own retries; the broker propagates their failures
// unchanged.
type Provider interface {
	GetSessions(ctx context.Context, scopes []string) ([]Session, error)
	CreateSession(ctx context.Context, scopes []string) (Session, error)
	RemoveSession(ctx context.Context, sessionID string) error

	// OnDidChangeSessions registers a handler for the provider's own
	// session-change stream. The returned handle must be disposed exactly
	// once when the registration is torn down.
	OnDidChangeSessions(handler func()) events.Disposable
}

// MessageBoxOptions describe a modal yes/no/many-button prompt.
type MessageBoxOptions struct {
	Title   string
	Message string
	Buttons []string
	Type    string
}

// MessageBoxResult carries the index of the button the user clicked.
type MessageBoxResult struct {
	Response int
}

// PromptGateway shows modal prompts to the human. Calls may block
// indefinitely; the broker imposes no timeout, so callers wanting one must
// cancel via ctx.
type PromptGateway interface {
	ShowMessageBox(ctx context.Context, options MessageBoxOptions) (MessageBoxResult, error)
}

// ProviderUpdateChannel is the notification channel the broker emits on
// whenever the provider-facing state changes.
const ProviderUpdateChannel = "authentication-provider-update"

// ProviderUpdate is the payload sent on ProviderUpdateChannel.
type ProviderUpdate struct {
	ID string
}

// NotificationSink is the event-broadcast transport to the UI.
type NotificationSink interface {
	Send(channel string, payload any)
}

// AccountInfo is one account a provider currently has a session for.
type AccountInfo struct {
	AccountID    string
	AccountLabel string
}

// ProviderInfo is the operator-facing projection of one registered provider.
// Requests is populated only while the provider has zero sessions.
type ProviderInfo struct {
	ID       string
	Label    string
	Accounts []AccountInfo
	Images   *ProviderImages
	Requests []requests.SessionRequestInfo
}

// MenuItemKind discriminates accounts-menu entries.
type MenuItemKind string

const (
	MenuItemRequest MenuItemKind = "request"
	MenuItemAccount MenuItemKind = "account"
)

// MenuItem is one entry of the accounts menu: either a pending sign-in
// request or a signed-in account.
type MenuItem struct {
	Kind         MenuItemKind
	Label        string
	ProviderID   string
	RequestID    string
	AccountID    string
	AccountLabel string
}
