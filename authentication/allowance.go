package authentication

import (
	"github.com/pkg/errors"

	"github.com/extensionhost/authbroker/allowances"
)

// ReadAllowedExtensions returns every access decision recorded for the
// provider account, empty if none.
func (b *Broker) ReadAllowedExtensions(providerID, accountID string) []allowances.AllowedExtension {
	return b.repos.Allowances.Read(providerID, accountID)
}

// UpdateAllowedExtension records an explicit access decision, allowed or
// revoked, overwriting any previous one for the extension. Unlike a declined
// prompt, a false written here sticks until changed.
func (b *Broker) UpdateAllowedExtension(providerID, accountID, extensionID, extensionName string, allowed bool) error {
	err := b.repos.Allowances.Upsert(providerID, accountID, allowances.AllowedExtension{
		ID:      extensionID,
		Name:    extensionName,
		Allowed: allowed,
	})
	if err != nil {
		return errors.Wrap(err, "[UpdateAllowedExtension] Allowances.Upsert")
	}
	b.notifyProviderUpdate(providerID)
	return nil
}

// IsAccessAllowed returns the recorded decision for the triple, or nil when
// none exists. The three-state return is load-bearing: nil prompts, false
// refuses outright.
func (b *Broker) IsAccessAllowed(providerID, accountID, extensionID string) *bool {
	return b.repos.Allowances.IsAllowed(providerID, accountID, extensionID)
}
