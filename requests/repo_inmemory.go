package requests

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is the in-memory implementation of Repo.
type InMemoryRepo struct {
	mu       sync.Mutex
	byID     map[string]SessionRequestInfo
	byScope  map[string]map[string][]string // providerID -> scopeKey -> extensionIDs
	ordinals map[string]int                 // providerID -> next request ordinal
}

// NewInMemoryRepo creates an empty session-request ledger.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		byID:     make(map[string]SessionRequestInfo),
		byScope:  make(map[string]map[string][]string),
		ordinals: make(map[string]int),
	}
}

// ScopeKey joins a sorted scope list into the canonical dedup key.
func ScopeKey(scopes []string) string {
	return strings.Join(scopes, ".")
}

// Add queues a request, deduplicating on (provider, scope-set, extension).
func (r *InMemoryRepo) Add(providerID, extensionID, extensionName string, scopes []string) (SessionRequestInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scopeKey := ScopeKey(scopes)
	index, ok := r.byScope[providerID]
	if !ok {
		index = make(map[string][]string)
		r.byScope[providerID] = index
	}
	for _, extID := range index[scopeKey] {
		if extID != extensionID {
			continue
		}
		for _, req := range r.byID {
			if req.ProviderID == providerID && req.ExtensionID == extensionID && ScopeKey(req.Scopes) == scopeKey {
				return req, false
			}
		}
	}

	// The ordinal is monotonic per provider, never reused while requests
	// can still be live, so a fresh ID cannot collide with a pending one.
	ordinal := r.ordinals[providerID]
	r.ordinals[providerID] = ordinal + 1
	req := SessionRequestInfo{
		ID:            fmt.Sprintf("%s-%s-%d", providerID, extensionID, ordinal),
		ProviderID:    providerID,
		ExtensionID:   extensionID,
		ExtensionName: extensionName,
		Scopes:        append([]string(nil), scopes...),
	}
	r.byID[req.ID] = req
	index[scopeKey] = append(index[scopeKey], extensionID)
	return req, true
}

// Get looks up a request by ID.
func (r *InMemoryRepo) Get(requestID string) (SessionRequestInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[requestID]
	return req, ok
}

// List returns every pending request, ordered by ID for stable output.
func (r *InMemoryRepo) List() []SessionRequestInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionRequestInfo, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByProvider returns the pending requests for one provider.
func (r *InMemoryRepo) ListByProvider(providerID string) []SessionRequestInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionRequestInfo, 0)
	for _, req := range r.byID {
		if req.ProviderID == providerID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveByExtension drops the extension's requests against the provider.
func (r *InMemoryRepo) RemoveByExtension(providerID, extensionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.byID {
		if req.ProviderID == providerID && req.ExtensionID == extensionID {
			delete(r.byID, id)
		}
	}

	index, ok := r.byScope[providerID]
	if !ok {
		return
	}
	for scopeKey, extIDs := range index {
		kept := extIDs[:0]
		for _, extID := range extIDs {
			if extID != extensionID {
				kept = append(kept, extID)
			}
		}
		if len(kept) == 0 {
			delete(index, scopeKey)
		} else {
			index[scopeKey] = kept
		}
	}
	if len(index) == 0 {
		delete(r.byScope, providerID)
	}
}

// RemoveProvider drops all requests and the scope index for the provider.
func (r *InMemoryRepo) RemoveProvider(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.byID {
		if req.ProviderID == providerID {
			delete(r.byID, id)
		}
	}
	delete(r.byScope, providerID)
	delete(r.ordinals, providerID)
}
