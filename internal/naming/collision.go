package naming

import (
	"sync"
)

// ClaimRegistry tracks destination paths claimed by source assets during a
// run so two assets never relocate onto the same output file. All methods
// are goroutine-safe.
type ClaimRegistry struct {
	mu     sync.Mutex
	owners map[string]string // destination path → asset path that owns it
}

// NewClaimRegistry creates a ready-to-use registry.
func NewClaimRegistry() *ClaimRegistry {
	return &ClaimRegistry{owners: make(map[string]string)}
}

// Claim records owner as the owner of dest. It succeeds when dest is
// unclaimed or already owned by owner (a forced backend re-emitting the same
// file). Otherwise it returns false and the current owner.
func (r *ClaimRegistry) Claim(owner, dest string) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.owners[dest]
	if exists && current != owner {
		return false, current
	}
	r.owners[dest] = owner
	return true, owner
}

// Owner returns the asset that claimed dest, if any.
func (r *ClaimRegistry) Owner(dest string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[dest]
	return owner, ok
}

// Len returns the number of claimed destinations.
func (r *ClaimRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}
