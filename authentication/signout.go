package authentication

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SignOut removes a session after the user confirms a message listing every
// extension that used it. An unknown provider or session id is a silent
// no-op: sign-out races against providers dropping sessions on their own.
func (b *Broker) SignOut(ctx context.Context, providerID, sessionID string) error {
	reg := b.registration(providerID)
	if reg == nil {
		b.log.Warn().Str("provider", providerID).Msg("sign out requested for unregistered provider")
		return nil
	}

	sessions, err := reg.provider.GetSessions(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[SignOut] provider.GetSessions")
	}

	var session *Session
	for i := range sessions {
		if sessions[i].ID == sessionID {
			session = &sessions[i]
			break
		}
	}
	if session == nil {
		return nil
	}

	accountLabel := session.Account.Label
	if accountLabel == "" {
		accountLabel = session.Account.ID
	}

	records := b.repos.Usage.Read(providerID, sessionID)
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.ExtensionName)
	}

	// A session created out-of-band may never have been consumed; there is
	// no extension list to recite then.
	message := fmt.Sprintf("Sign out of the account '%s'?", accountLabel)
	if len(records) > 0 {
		noun := "these extensions"
		if len(records) == 1 {
			noun = "this extension"
		}
		message = fmt.Sprintf("The account '%s' has been used by: %s. Sign out from %s?",
			accountLabel, strings.Join(names, ", "), noun)
	}

	result, err := b.prompt.ShowMessageBox(ctx, MessageBoxOptions{
		Title:   "Sign Out",
		Message: message,
		Buttons: []string{"Cancel", "Sign Out"},
		Type:    "question",
	})
	if err != nil {
		return errors.Wrap(err, "[SignOut] prompt.ShowMessageBox")
	}
	if result.Response != 1 {
		return nil
	}

	if err := reg.provider.RemoveSession(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[SignOut] provider.RemoveSession")
	}
	if err := b.repos.Usage.Remove(providerID, sessionID); err != nil {
		return errors.Wrap(err, "[SignOut] Usage.Remove")
	}

	b.log.Debug().Str("provider", providerID).Str("session", sessionID).Msg("signed out")
	return nil
}
