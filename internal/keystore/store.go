package keystore

import (
	"sync"
)

// Store is the set of identities this node can sign with.
type Store struct {
	mu         sync.RWMutex
	identities []*Identity
	byAddress  map[string]*Identity
}

func NewStore(ids ...*Identity) *Store {
	s := &Store{byAddress: make(map[string]*Identity)}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add registers id. Adding the same address twice is a no-op.
func (s *Store) Add(id *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byAddress[id.Address()]; ok {
		return
	}
	s.identities = append(s.identities, id)
	s.byAddress[id.Address()] = id
}

// AnyLocalSigningIdentity returns the first identity added, if any.
func (s *Store) AnyLocalSigningIdentity() (*Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.identities) == 0 {
		return nil, false
	}
	return s.identities[0], true
}

func (s *Store) Get(address string) (*Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAddress[address]
	return id, ok
}

// All returns identities in insertion order.
func (s *Store) All() []*Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Identity(nil), s.identities...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities)
}
