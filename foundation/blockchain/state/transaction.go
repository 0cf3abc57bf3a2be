package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// Submit accepts a transaction into the mempool. No checks are performed,
// the sender is expected to have checked its balance before submitting and
// the signature is stored as provided.
func (s *State) Submit(tx database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Push(tx)

	s.evHandler("state: Submit: tx[%s]: mempool[%d]", tx, n)
}
