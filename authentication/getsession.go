package authentication

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/extensionhost/authbroker/allowances"
	"github.com/extensionhost/authbroker/internal/utils"
)

// GetSession resolves a session for the requesting extension, applying the
// access-allowance policy described on the package. Every expected "no
// result" outcome (denied access, silent miss, declined prompt) is a nil
// session with a nil error; errors are reserved for contract violations and
// collaborator failures.
func (b *Broker) GetSession(ctx context.Context, extension ExtensionDescriptor, providerID string, scopes []string, options *SessionOptions) (*Session, error) {
	opts := utils.Value(options)

	// Fail fast before any ledger mutation or provider call.
	if opts.ForceNewSession || opts.ClearSessionPreference {
		return nil, errors.Wrap(UnsupportedOptionsErr, "[GetSession]")
	}
	if opts.CreateIfNone && opts.Silent {
		return nil, errors.Wrap(ConflictingOptionsErr, "[GetSession]")
	}

	sorted := normalizeScopes(scopes)

	// An unregistered provider simply has no sessions. A request can still
	// be queued against it below and becomes actionable once it registers.
	reg := b.registration(providerID)

	var sessions []Session
	if reg != nil {
		var err error
		sessions, err = reg.provider.GetSessions(ctx, sorted)
		if err != nil {
			return nil, errors.Wrap(err, "[GetSession] provider.GetSessions")
		}
	}

	// The first session is canonical even when the provider supports
	// multiple accounts.
	if len(sessions) > 0 {
		return b.resolveExisting(ctx, extension, reg, sessions[0], opts)
	}

	if opts.CreateIfNone {
		if reg == nil {
			return nil, errors.Wrapf(ProviderNotInstalledErr, "[GetSession] provider %q", providerID)
		}
		return b.createSession(ctx, extension, reg, sorted)
	}

	if opts.Silent {
		return nil, nil
	}

	b.queueSessionRequest(extension, providerID, sorted)
	return nil, nil
}

// GetOrCreateSession is GetSession with CreateIfNone set: the caller is
// guaranteed either a session or a declined prompt, never a silent miss.
func (b *Broker) GetOrCreateSession(ctx context.Context, extension ExtensionDescriptor, providerID string, scopes []string) (*Session, error) {
	return b.GetSession(ctx, extension, providerID, scopes, &SessionOptions{CreateIfNone: true})
}

// resolveExisting applies the tri-state allowance policy to a session the
// provider already holds.
func (b *Broker) resolveExisting(ctx context.Context, extension ExtensionDescriptor, reg *registration, session Session, opts SessionOptions) (*Session, error) {
	accountLabel := session.Account.Label
	if accountLabel == "" {
		accountLabel = session.Account.ID
	}

	allowed := b.repos.Allowances.IsAllowed(reg.id, session.Account.ID, extension.ID)
	switch {
	case allowed != nil && !*allowed:
		return nil, nil

	case allowed == nil:
		if opts.Silent {
			return nil, nil
		}

		result, err := b.prompt.ShowMessageBox(ctx, MessageBoxOptions{
			Title:   "Account Access Request",
			Message: fmt.Sprintf("The extension '%s' wants to access the %s account '%s'.", extension.Label, reg.label, accountLabel),
			Buttons: []string{"Deny", "Allow"},
			Type:    "question",
		})
		if err != nil {
			return nil, errors.Wrap(err, "[GetSession] prompt.ShowMessageBox")
		}
		if result.Response != 1 {
			// A decline is never persisted: the user gets asked again on
			// the next attempt.
			return nil, nil
		}

		if err := b.repos.Allowances.Upsert(reg.id, session.Account.ID, allowances.AllowedExtension{
			ID:      extension.ID,
			Name:    extension.Label,
			Allowed: true,
		}); err != nil {
			return nil, errors.Wrap(err, "[GetSession] Allowances.Upsert")
		}
		b.notifyProviderUpdate(reg.id)
	}

	if err := b.repos.Usage.Add(reg.id, session.ID, extension.ID, extension.Label); err != nil {
		return nil, errors.Wrap(err, "[GetSession] Usage.Add")
	}
	return &session, nil
}

// createSession confirms sign-in with the user, creates a session and grants
// the creating extension access to the new account without a second prompt.
func (b *Broker) createSession(ctx context.Context, extension ExtensionDescriptor, reg *registration, scopes []string) (*Session, error) {
	result, err := b.prompt.ShowMessageBox(ctx, MessageBoxOptions{
		Title:   "Sign In Request",
		Message: fmt.Sprintf("The extension '%s' wants to sign in using %s.", extension.Label, reg.label),
		Buttons: []string{"Cancel", "Allow"},
		Type:    "question",
	})
	if err != nil {
		return nil, errors.Wrap(err, "[GetSession] prompt.ShowMessageBox")
	}
	if result.Response != 1 {
		return nil, nil
	}

	session, err := reg.provider.CreateSession(ctx, scopes)
	if err != nil {
		return nil, errors.Wrap(err, "[GetSession] provider.CreateSession")
	}

	// The extension now holds a session, so any of its pending requests
	// against this provider are satisfied.
	b.repos.Requests.RemoveByExtension(reg.id, extension.ID)

	if err := b.repos.Allowances.Upsert(reg.id, session.Account.ID, allowances.AllowedExtension{
		ID:      extension.ID,
		Name:    extension.Label,
		Allowed: true,
	}); err != nil {
		return nil, errors.Wrap(err, "[GetSession] Allowances.Upsert")
	}
	b.notifyProviderUpdate(reg.id)

	if err := b.repos.Usage.Add(reg.id, session.ID, extension.ID, extension.Label); err != nil {
		return nil, errors.Wrap(err, "[GetSession] Usage.Add")
	}
	return &session, nil
}

// queueSessionRequest performs the synchronous check-and-insert into the
// request ledger. It must not block, so that two concurrent callers cannot
// both observe "no pending request". The provider update is re-emitted even
// when the ask deduplicates onto an existing request.
func (b *Broker) queueSessionRequest(extension ExtensionDescriptor, providerID string, scopes []string) {
	req, added := b.repos.Requests.Add(providerID, extension.ID, extension.Label, scopes)
	if added {
		b.log.Debug().
			Str("provider", providerID).
			Str("extension", extension.ID).
			Str("request", req.ID).
			Msg("session request queued")
	}
	b.notifyProviderUpdate(providerID)
}

// normalizeScopes returns a lexicographically sorted copy so that scope-set
// comparisons are order-independent.
func normalizeScopes(scopes []string) []string {
	sorted := append([]string(nil), scopes...)
	sort.Strings(sorted)
	return sorted
}
