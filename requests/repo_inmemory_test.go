package requests_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/extensionhost/authbroker/requests"
)

func TestAddAssignsDeterministicIDs(t *testing.T) {
	repo := requests.NewInMemoryRepo()

	first, added := repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	require.True(t, added)
	require.Equal(t, "acme-ext1-0", first.ID)

	second, added := repo.Add("acme", "ext2", "Ext 2", []string{"read"})
	require.True(t, added)
	require.Equal(t, "acme-ext2-1", second.ID)
}

func TestAddDeduplicatesOnProviderScopeExtension(t *testing.T) {
	repo := requests.NewInMemoryRepo()

	first, added := repo.Add("acme", "ext1", "Ext 1", []string{"read", "write"})
	require.True(t, added)

	again, added := repo.Add("acme", "ext1", "Ext 1", []string{"read", "write"})
	require.False(t, added)
	require.Equal(t, first.ID, again.ID)
	require.Len(t, repo.List(), 1)

	// A different scope-set is a distinct request.
	_, added = repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	require.True(t, added)
	require.Len(t, repo.List(), 2)
}

func TestGetAndList(t *testing.T) {
	repo := requests.NewInMemoryRepo()
	req, _ := repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	repo.Add("globex", "ext1", "Ext 1", []string{"read"})

	got, ok := repo.Get(req.ID)
	require.True(t, ok)
	require.Equal(t, req, got)

	_, ok = repo.Get("missing")
	require.False(t, ok)

	require.Len(t, repo.List(), 2)
	byProvider := repo.ListByProvider("acme")
	require.Len(t, byProvider, 1)
	require.Equal(t, "acme", byProvider[0].ProviderID)
}

func TestRemoveByExtensionDropsAllScopeSets(t *testing.T) {
	repo := requests.NewInMemoryRepo()
	repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	repo.Add("acme", "ext1", "Ext 1", []string{"write"})
	repo.Add("acme", "ext2", "Ext 2", []string{"read"})

	repo.RemoveByExtension("acme", "ext1")

	remaining := repo.List()
	require.Len(t, remaining, 1)
	require.Equal(t, "ext2", remaining[0].ExtensionID)

	// ext1's slot in the shared scope bucket is freed, so it can re-ask.
	_, added := repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	require.True(t, added)
}

func TestOrdinalsAreNotReusedAfterRemovals(t *testing.T) {
	repo := requests.NewInMemoryRepo()

	repo.Add("acme", "ext1", "Ext 1", []string{"a"})
	second, _ := repo.Add("acme", "ext2", "Ext 2", []string{"a"})
	require.Equal(t, "acme-ext2-1", second.ID)

	repo.RemoveByExtension("acme", "ext1")

	// ext2 already holds a live request under ordinal 1; a new ask with a
	// different scope-set must not reuse that slot.
	third, added := repo.Add("acme", "ext2", "Ext 2", []string{"b"})
	require.True(t, added)
	require.NotEqual(t, second.ID, third.ID)

	require.Len(t, repo.List(), 2)
	got, ok := repo.Get(second.ID)
	require.True(t, ok)
	require.Equal(t, []string{"a"}, got.Scopes)

	// The scope index stayed consistent: re-asking for the original
	// scope-set still deduplicates onto the live request.
	again, added := repo.Add("acme", "ext2", "Ext 2", []string{"a"})
	require.False(t, added)
	require.Equal(t, second.ID, again.ID)
}

func TestRemoveProviderClearsEverything(t *testing.T) {
	repo := requests.NewInMemoryRepo()
	repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	repo.Add("acme", "ext2", "Ext 2", []string{"write"})
	repo.Add("globex", "ext1", "Ext 1", []string{"read"})

	repo.RemoveProvider("acme")

	require.Empty(t, repo.ListByProvider("acme"))
	require.Len(t, repo.List(), 1)

	_, added := repo.Add("acme", "ext1", "Ext 1", []string{"read"})
	require.True(t, added)
}
