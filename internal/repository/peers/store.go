// Package peers holds the peer-profile snapshot loaded at startup.
package peers

import (
	"github.com/litswap/litswap/internal/domain"
)

// Store is an immutable peer snapshot; profiles never change within a
// session, so reads need no locking.
type Store struct {
	peers []domain.Peer
}

// New creates a peer store from the loaded profiles.
func New(initial []domain.Peer) *Store {
	peers := make([]domain.Peer, len(initial))
	copy(peers, initial)
	return &Store{peers: peers}
}

// Snapshot returns all peer profiles in load order.
func (s *Store) Snapshot() []domain.Peer {
	return s.peers
}

// Len returns the number of peers.
func (s *Store) Len() int {
	return len(s.peers)
}
