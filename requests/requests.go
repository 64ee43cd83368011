package requests

// SessionRequestInfo is a queued record of "extension wants a session from
// this provider, none exists yet, and the ask was non-interactive". Scopes
// are stored sorted so that scope-set equality is order-independent.
type SessionRequestInfo struct {
	ID            string
	ProviderID    string
	ExtensionID   string
	ExtensionName string
	Scopes        []string
}

// Repo is the pending session-request ledger. All methods are synchronous:
// the broker relies on Add being a non-blocking check-and-insert so that two
// concurrent callers cannot both observe "no existing request".
type Repo interface {
	// Add queues a request unless one is already pending for the same
	// (provider, scope-set, extension) combination. Scopes must arrive
	// sorted. It returns the live request and whether it was newly added.
	Add(providerID, extensionID, extensionName string, scopes []string) (SessionRequestInfo, bool)

	// Get looks up a request by ID.
	Get(requestID string) (SessionRequestInfo, bool)

	// List returns every pending request.
	List() []SessionRequestInfo

	// ListByProvider returns the pending requests for one provider.
	ListByProvider(providerID string) []SessionRequestInfo

	// RemoveByExtension drops every request the extension holds against the
	// provider, whatever the scope-set.
	RemoveByExtension(providerID, extensionID string)

	// RemoveProvider drops every request and the whole scope index for the
	// provider. Used after an operator-triggered sign-in: the provider can
	// now supply a session, so all pending asks are satisfied.
	RemoveProvider(providerID string)
}
