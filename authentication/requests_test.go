package authentication_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/extensionhost/authbroker/authentication"
	"github.com/extensionhost/authbroker/authentication/authfakes"
)

func TestRepeatedAskQueuesOneRequest(t *testing.T) {
	f := setupTestFixture(t)
	f.registerProvider(t, testProviderID, testProviderLabel, authfakes.NewFakeProvider())
	f.sink.Reset()

	for i := 0; i < 2; i++ {
		session, err := f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"read"}, nil)
		require.NoError(t, err)
		require.Nil(t, session)
	}

	pending := f.broker.GetSessionRequests()
	require.Len(t, pending, 1)
	require.Equal(t, testProviderID+"-"+ext1.ID+"-0", pending[0].ID)
	require.Equal(t, []string{"read"}, pending[0].Scopes)

	// The deduplicated ask still re-emits the provider update.
	require.Equal(t, []string{testProviderID, testProviderID}, f.sink.ProviderUpdates())
}

func TestScopeOrderDoesNotDuplicateRequests(t *testing.T) {
	f := setupTestFixture(t)
	f.registerProvider(t, testProviderID, testProviderLabel, authfakes.NewFakeProvider())

	_, err := f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"write", "read"}, nil)
	require.NoError(t, err)
	_, err = f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"read", "write"}, nil)
	require.NoError(t, err)

	pending := f.broker.GetSessionRequests()
	require.Len(t, pending, 1)
	require.Equal(t, []string{"read", "write"}, pending[0].Scopes)
}

func TestEachExtensionGetsItsOwnRequest(t *testing.T) {
	f := setupTestFixture(t)
	f.registerProvider(t, testProviderID, testProviderLabel, authfakes.NewFakeProvider())

	_, err := f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"read"}, nil)
	require.NoError(t, err)
	_, err = f.broker.GetSession(context.Background(), ext2, testProviderID, []string{"read"}, nil)
	require.NoError(t, err)

	pending := f.broker.GetSessionRequests()
	require.Len(t, pending, 2)
	require.NotEqual(t, pending[0].ID, pending[1].ID)
}

func TestInteractiveCreationClearsOwnPendingRequests(t *testing.T) {
	f := setupTestFixture(t)
	provider := authfakes.NewFakeProvider()
	f.registerProvider(t, testProviderID, testProviderLabel, provider)

	_, err := f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"read"}, nil)
	require.NoError(t, err)
	_, err = f.broker.GetSession(context.Background(), ext2, testProviderID, []string{"read"}, nil)
	require.NoError(t, err)

	f.prompt.EnqueueResponse(1)
	session, err := f.broker.GetOrCreateSession(context.Background(), ext1, testProviderID, []string{"read"})
	require.NoError(t, err)
	require.NotNil(t, session)

	pending := f.broker.GetSessionRequests()
	require.Len(t, pending, 1)
	require.Equal(t, ext2.ID, pending[0].ExtensionID)
}

func TestExecuteSessionRequestUnknownIDFails(t *testing.T) {
	f := setupTestFixture(t)

	err := f.broker.ExecuteSessionRequest(context.Background(), "nope")
	require.ErrorIs(t, err, authentication.RequestNotFoundErr)
}

func TestExecuteSessionRequestUnregisteredProviderFails(t *testing.T) {
	f := setupTestFixture(t)
	dispose := f.registerProvider(t, testProviderID, testProviderLabel, authfakes.NewFakeProvider())

	_, err := f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"read"}, nil)
	require.NoError(t, err)
	pending := f.broker.GetSessionRequests()
	require.Len(t, pending, 1)

	dispose.Dispose()

	err = f.broker.ExecuteSessionRequest(context.Background(), pending[0].ID)
	require.ErrorIs(t, err, authentication.ProviderNotFoundErr)
}

func TestExecuteSessionRequestClearsEveryProviderRequest(t *testing.T) {
	f := setupTestFixture(t)
	provider := authfakes.NewFakeProvider()
	f.registerProvider(t, testProviderID, testProviderLabel, provider)

	_, err := f.broker.GetSession(context.Background(), ext1, testProviderID, []string{"read"}, nil)
	require.NoError(t, err)
	_, err = f.broker.GetSession(context.Background(), ext2, testProviderID, []string{"write"}, nil)
	require.NoError(t, err)
	pending := f.broker.GetSessionRequests()
	require.Len(t, pending, 2)

	var ext1Request string
	for _, req := range pending {
		if req.ExtensionID == ext1.ID {
			ext1Request = req.ID
		}
	}

	require.NoError(t, f.broker.ExecuteSessionRequest(context.Background(), ext1Request))

	calls := provider.CreateCalls()
	require.Len(t, calls, 1)
	require.Equal(t, []string{"read"}, calls[0])

	// The provider can now satisfy every pending ask, so all of them go.
	require.Empty(t, f.broker.GetSessionRequests())
}
