package usage

// Record proves an extension consumed a particular session. Used only to
// phrase the sign-out confirmation.
type Record struct {
	ProviderID    string
	SessionID     string
	ExtensionID   string
	ExtensionName string
}

// Repo is the account-usage ledger: additive during normal operation, purged
// per (provider, session) pair on successful sign-out.
type Repo interface {
	// Add records a usage row. Idempotent on the (provider, session,
	// extension) triple.
	Add(providerID, sessionID, extensionID, extensionName string) error

	// Read returns every row for the (provider, session) pair.
	Read(providerID, sessionID string) []Record

	// Remove purges all rows for the (provider, session) pair.
	Remove(providerID, sessionID string) error
}
