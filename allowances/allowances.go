package allowances

// AllowedExtension is one extension's durable access decision for a provider
// account. Allowed false is an explicit revoke, distinct from the extension
// being absent from the bucket entirely (undecided).
type AllowedExtension struct {
	ID      string
	Name    string
	Allowed bool
}

// Repo stores access decisions keyed by (provider, account). The unit of
// trust is the account, not the provider, since one provider can host
// multiple accounts.
type Repo interface {
	// Read returns every decision recorded for the account, empty if none.
	Read(providerID, accountID string) []AllowedExtension

	// Upsert records a decision, overwriting any existing entry for the
	// same extension ID within the bucket.
	Upsert(providerID, accountID string, ext AllowedExtension) error

	// IsAllowed returns the decision for the extension, or nil when no
	// decision exists. Callers must not collapse nil into false: undecided
	// triggers a prompt, denied refuses outright.
	IsAllowed(providerID, accountID, extensionID string) *bool
}
