package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Snapshot describes the ledger at a single point in time.
type Snapshot struct {
	Valid       bool
	Difficulty  uint
	Blocks      int
	Uncommitted int
	Balances    map[string]float64
}

// QuerySnapshot reports validity, difficulty, chain and mempool sizes and the
// balances of the addresses from one view of the ledger. Balances are only
// calculated for a valid chain.
func (s *State) QuerySnapshot(addresses []string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Valid:       s.isValid(),
		Difficulty:  s.difficulty,
		Blocks:      len(s.chain),
		Uncommitted: s.mempool.Count(),
	}

	if snap.Valid {
		snap.Balances = s.balances(addresses)
	}

	return snap
}

// IsValid walks the chain from the first block after genesis and checks each
// block references its parent's hash and that its stored hash still matches
// its contents. Nothing is cached, the whole chain is checked on every call.
func (s *State) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isValid()
}

// isValid performs the chain walk. The caller must hold mu.
func (s *State) isValid() bool {
	for i := 1; i < len(s.chain); i++ {
		if err := database.ValidateLink(s.chain[i-1], s.chain[i]); err != nil {
			s.evHandler("state: IsValid: INVALID: %s", err)
			return false
		}
	}

	return true
}

// BalanceOf calculates the balance for the address by replaying every
// transaction in the chain. Transactions still in the mempool are not
// counted.
func (s *State) BalanceOf(address string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance float64
	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if tx.Sender == address {
				balance -= tx.Amount
			}
			if tx.Receiver == address {
				balance += tx.Amount
			}
		}
	}

	return balance
}

// QueryBalances calculates the balance of every address in one pass over
// the chain. Addresses that never appear in the chain are reported as 0.
func (s *State) QueryBalances(addresses []string) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balances(addresses)
}

// balances performs the replay for QueryBalances. The caller must hold mu.
func (s *State) balances(addresses []string) map[string]float64 {
	balances := make(map[string]float64, len(addresses))
	for _, address := range addresses {
		balances[address] = 0
	}

	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if _, exists := balances[tx.Sender]; exists {
				balances[tx.Sender] -= tx.Amount
			}
			if _, exists := balances[tx.Receiver]; exists {
				balances[tx.Receiver] += tx.Amount
			}
		}
	}

	return balances
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mempool.Count()
}

// QueryDifficulty returns the difficulty the next block will be mined at.
func (s *State) QueryDifficulty() uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.difficulty
}

// QueryChainLength returns the number of blocks in the chain, genesis included.
func (s *State) QueryChainLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.chain)
}

// QueryBlocksByAccount returns the set of blocks with a transaction sent or
// received by the address. If the address is empty, all blocks are returned.
func (s *State) QueryBlocksByAccount(address string) []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []database.Block
	for _, block := range s.chain {
		if address == "" {
			out = append(out, block.Copy())
			continue
		}

		for _, tx := range block.Trans {
			if tx.Sender == address || tx.Receiver == address {
				out = append(out, block.Copy())
				break
			}
		}
	}

	return out
}
