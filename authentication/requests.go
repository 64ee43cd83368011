package authentication

import (
	"context"

	"github.com/pkg/errors"

	"github.com/extensionhost/authbroker/requests"
)

// GetSessionRequests returns every pending session request.
func (b *Broker) GetSessionRequests() []requests.SessionRequestInfo {
	return b.repos.Requests.List()
}

// ExecuteSessionRequest performs an operator-triggered sign-in for a queued
// request. A successful creation clears every pending request for the
// provider, not just the executed one: the provider can now supply a session
// to satisfy them all.
func (b *Broker) ExecuteSessionRequest(ctx context.Context, requestID string) error {
	request, ok := b.repos.Requests.Get(requestID)
	if !ok {
		return errors.Wrapf(RequestNotFoundErr, "[ExecuteSessionRequest] %q", requestID)
	}

	reg := b.registration(request.ProviderID)
	if reg == nil {
		return errors.Wrapf(ProviderNotFoundErr, "[ExecuteSessionRequest] provider %q", request.ProviderID)
	}

	if _, err := reg.provider.CreateSession(ctx, request.Scopes); err != nil {
		return errors.Wrap(err, "[ExecuteSessionRequest] provider.CreateSession")
	}

	b.repos.Requests.RemoveProvider(request.ProviderID)
	b.log.Debug().Str("provider", request.ProviderID).Str("request", requestID).Msg("session request executed")
	return nil
}
