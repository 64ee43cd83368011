package usage

import (
	"fmt"
	"sync"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is the in-memory implementation of Repo.
type InMemoryRepo struct {
	mu   sync.RWMutex
	rows map[string][]Record // providerID:sessionID -> records
}

// NewInMemoryRepo creates an empty usage ledger.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{rows: make(map[string][]Record)}
}

func pairKey(providerID, sessionID string) string {
	return fmt.Sprintf("%s:%s", providerID, sessionID)
}

// Add records that the extension consumed the session.
func (r *InMemoryRepo) Add(providerID, sessionID, extensionID, extensionName string) error {
	if providerID == "" {
		return fmt.Errorf("providerID is required")
	}
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if extensionID == "" {
		return fmt.Errorf("extensionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(providerID, sessionID)
	for _, row := range r.rows[key] {
		if row.ExtensionID == extensionID {
			return nil
		}
	}
	r.rows[key] = append(r.rows[key], Record{
		ProviderID:    providerID,
		SessionID:     sessionID,
		ExtensionID:   extensionID,
		ExtensionName: extensionName,
	})
	return nil
}

// Read returns a copy of the rows for the (provider, session) pair.
func (r *InMemoryRepo) Read(providerID, sessionID string) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.rows[pairKey(providerID, sessionID)]
	out := make([]Record, len(rows))
	copy(out, rows)
	return out
}

// Remove purges every row for the (provider, session) pair.
func (r *InMemoryRepo) Remove(providerID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, pairKey(providerID, sessionID))
	return nil
}
