package authentication

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/extensionhost/authbroker/requests"
)

// GetAuthenticationProvidersInfo projects every registered provider for the
// operator-facing surface. Pending session requests are reported only while
// the provider has zero sessions; once any session exists they are
// suppressed, and become actionable again when all sessions are gone.
func (b *Broker) GetAuthenticationProvidersInfo(ctx context.Context) ([]ProviderInfo, error) {
	regs := b.registrationSnapshot()

	infos := make([]ProviderInfo, 0, len(regs))
	for _, reg := range regs {
		sessions, err := reg.provider.GetSessions(ctx, nil)
		if err != nil {
			// One broken provider must not hide the healthy ones from the
			// operator surface. Its session state is unknown, so project it
			// with no accounts and no actionable requests.
			b.log.Warn().Err(err).Str("provider", reg.id).Msg("provider failed to list sessions")
			infos = append(infos, ProviderInfo{
				ID:       reg.id,
				Label:    reg.label,
				Accounts: []AccountInfo{},
				Images:   reg.options.Images,
				Requests: []requests.SessionRequestInfo{},
			})
			continue
		}

		accounts := make([]AccountInfo, 0, len(sessions))
		for _, session := range sessions {
			label := session.Account.Label
			if label == "" {
				label = session.Account.ID
			}
			accounts = append(accounts, AccountInfo{AccountID: session.Account.ID, AccountLabel: label})
		}

		pending := []requests.SessionRequestInfo{}
		if len(sessions) == 0 {
			pending = b.repos.Requests.ListByProvider(reg.id)
		}

		infos = append(infos, ProviderInfo{
			ID:       reg.id,
			Label:    reg.label,
			Accounts: accounts,
			Images:   reg.options.Images,
			Requests: pending,
		})
	}
	return infos, nil
}

// GetAccountsMenuInfo composes the accounts menu: one entry per pending
// session request and one per (provider, account) pair currently signed in.
func (b *Broker) GetAccountsMenuInfo(ctx context.Context) ([]MenuItem, error) {
	infos, err := b.GetAuthenticationProvidersInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[GetAccountsMenuInfo]")
	}

	items := make([]MenuItem, 0)
	for _, info := range infos {
		for _, request := range info.Requests {
			items = append(items, MenuItem{
				Kind:       MenuItemRequest,
				Label:      fmt.Sprintf("Sign in with %s to use %s", info.Label, request.ExtensionName),
				ProviderID: info.ID,
				RequestID:  request.ID,
			})
		}
		for _, account := range info.Accounts {
			items = append(items, MenuItem{
				Kind:         MenuItemAccount,
				Label:        fmt.Sprintf("%s (%s)", account.AccountLabel, info.Label),
				ProviderID:   info.ID,
				AccountID:    account.AccountID,
				AccountLabel: account.AccountLabel,
			})
		}
	}
	return items, nil
}
