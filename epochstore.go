package elector

import "sync"

// EpochStore is the small critical section that owns the local node's
// current_epoch. Propose is the linearization point for "becoming primary
// at epoch E": every call is serialized behind a single mutex, in the same
// spirit as rafty's currentTerm/votedFor pair but generalized to carry an
// idempotent re-assertion rule for the same candidate at the same epoch.
type EpochStore struct {
	mu      sync.Mutex
	current PrimaryEpoch

	// proposer tracks who last successfully proposed the current epoch,
	// so a re-assertion of the same identity at the same epoch can be
	// idempotent.
	proposer MemberId
	hasOwner bool
}

// NewEpochStore returns a store initialized to initial, the largest epoch
// ever observed for this replica set (0 if none).
func NewEpochStore(initial PrimaryEpoch) *EpochStore {
	return &EpochStore{current: initial}
}

// Get returns the current epoch.
func (s *EpochStore) Get() PrimaryEpoch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Propose attempts to commit epoch as the new current_epoch on behalf of
// candidate. It succeeds, and updates current_epoch, iff epoch is strictly
// greater than current, or epoch equals current and candidate is the same
// identity that most recently won it (idempotent re-assertion). It fails
// otherwise, which is how a losing racer in a simultaneous election learns
// it lost.
func (s *EpochStore) Propose(epoch PrimaryEpoch, candidate MemberId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case epoch > s.current:
		s.current = epoch
		s.proposer = candidate
		s.hasOwner = true
		return true
	case epoch == s.current && s.hasOwner && s.proposer == candidate:
		return true
	default:
		return false
	}
}

// Observe raises current_epoch to max(current, epoch) without asserting an
// identity, e.g. on learning of a higher epoch via heartbeats or an RPC
// reply. It never lowers current_epoch: no node ever moves current_epoch
// backward.
func (s *EpochStore) Observe(epoch PrimaryEpoch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch > s.current {
		s.current = epoch
		s.hasOwner = false
	}
}
