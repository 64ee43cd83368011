package authentication_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/extensionhost/authbroker/allowances"
)

func TestReadAllowedExtensionsEmptyBucket(t *testing.T) {
	f := setupTestFixture(t)

	require.Empty(t, f.broker.ReadAllowedExtensions(testProviderID, "a1"))
}

func TestUpdateAllowedExtensionOverwritesInPlace(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.broker.UpdateAllowedExtension(testProviderID, "a1", ext1.ID, ext1.Label, true))
	require.NoError(t, f.broker.UpdateAllowedExtension(testProviderID, "a1", ext1.ID, ext1.Label, false))

	list := f.broker.ReadAllowedExtensions(testProviderID, "a1")
	require.Equal(t, []allowances.AllowedExtension{{ID: ext1.ID, Name: ext1.Label, Allowed: false}}, list)

	// Every write broadcasts a provider update.
	require.Equal(t, []string{testProviderID, testProviderID}, f.sink.ProviderUpdates())
}

func TestIsAccessAllowedIsTriState(t *testing.T) {
	f := setupTestFixture(t)

	require.Nil(t, f.broker.IsAccessAllowed(testProviderID, "a1", ext1.ID))

	require.NoError(t, f.broker.UpdateAllowedExtension(testProviderID, "a1", ext1.ID, ext1.Label, false))
	denied := f.broker.IsAccessAllowed(testProviderID, "a1", ext1.ID)
	require.NotNil(t, denied)
	require.False(t, *denied)

	require.NoError(t, f.broker.UpdateAllowedExtension(testProviderID, "a1", ext1.ID, ext1.Label, true))
	allowed := f.broker.IsAccessAllowed(testProviderID, "a1", ext1.ID)
	require.NotNil(t, allowed)
	require.True(t, *allowed)

	// Buckets are per account.
	require.Nil(t, f.broker.IsAccessAllowed(testProviderID, "a2", ext1.ID))
}
