// Package accounts tracks which addresses may submit prices.
package accounts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
)

// Registry is the set of registered signers.
type Registry struct {
	mu      sync.RWMutex
	signers map[crypto.AccountID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{signers: make(map[crypto.AccountID]struct{})}
}

// Add registers an address. Invalid addresses are rejected.
func (r *Registry) Add(address string) error {
	id, err := crypto.ParseAddress(address)
	if err != nil {
		return fmt.Errorf("register signer %q: %w", address, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signers[id] = struct{}{}
	return nil
}

func (r *Registry) Remove(address string) {
	id, err := crypto.ParseAddress(address)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.signers, id)
}

// IsAuthorized reports whether address is a registered signer.
func (r *Registry) IsAuthorized(address string) bool {
	id, err := crypto.ParseAddress(address)
	if err != nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.signers[id]
	return ok
}

// List returns registered addresses in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.signers))
	for id := range r.signers {
		out = append(out, id.Address())
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signers)
}
