package allowances

import (
	"fmt"
	"sync"

	"github.com/extensionhost/authbroker/internal/utils"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is the in-memory implementation of Repo. Decisions survive
// provider unregistration but not process restart.
type InMemoryRepo struct {
	mu      sync.RWMutex
	buckets map[string][]AllowedExtension // providerID:accountID -> decisions
}

// NewInMemoryRepo creates an empty allowance store.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{buckets: make(map[string][]AllowedExtension)}
}

func bucketKey(providerID, accountID string) string {
	return fmt.Sprintf("%s:%s", providerID, accountID)
}

// Read returns a copy of the bucket for the given provider account.
func (r *InMemoryRepo) Read(providerID, accountID string) []AllowedExtension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.buckets[bucketKey(providerID, accountID)]
	out := make([]AllowedExtension, len(bucket))
	copy(out, bucket)
	return out
}

// Upsert records a decision for one extension within the account bucket.
func (r *InMemoryRepo) Upsert(providerID, accountID string, ext AllowedExtension) error {
	if providerID == "" {
		return fmt.Errorf("providerID is required")
	}
	if accountID == "" {
		return fmt.Errorf("accountID is required")
	}
	if ext.ID == "" {
		return fmt.Errorf("extension ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := bucketKey(providerID, accountID)
	bucket := r.buckets[key]
	for i := range bucket {
		if bucket[i].ID == ext.ID {
			bucket[i] = ext
			return nil
		}
	}
	r.buckets[key] = append(bucket, ext)
	return nil
}

// IsAllowed returns the recorded decision or nil when undecided.
func (r *InMemoryRepo) IsAllowed(providerID, accountID, extensionID string) *bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ext := range r.buckets[bucketKey(providerID, accountID)] {
		if ext.ID == extensionID {
			return utils.Ptr(ext.Allowed)
		}
	}
	return nil
}
