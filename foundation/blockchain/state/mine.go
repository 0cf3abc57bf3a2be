package state

import (
	"context"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// AppendBlock mines a block holding the specified transactions on top of the
// latest block and appends it to the chain. The block starts with a nonce of
// 0 and is mined at the current difficulty. The difficulty is not retargeted.
func (s *State) AppendBlock(ctx context.Context, trans []database.Tx) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	block, err := s.mineNextBlock(ctx, trans)
	if err != nil {
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = append(s.chain, block)

	return block.Copy(), nil
}

// MinePending creates a block that pays the miner the mining reward, includes
// every transaction in the mempool and pays the miner the sum of their fees.
// Once the block is appended the difficulty is retargeted.
//
// The mempool is drained most recent transaction first. If ctx is cancelled
// before the block is solved the drained transactions are put back and the
// chain and difficulty are left as they were.
func (s *State) MinePending(ctx context.Context, minerAddress string) (database.Block, error) {
	s.evHandler("state: MinePending: started: miner[%s]", minerAddress)
	defer s.evHandler("state: MinePending: completed")

	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.mu.Lock()
	drained := s.mempool.Drain()
	s.mu.Unlock()

	// The block reward always comes first.
	trans := make([]database.Tx, 0, len(drained)+2)
	trans = append(trans, database.NewTx(database.SystemSender, minerAddress, s.genesis.MiningReward, 0))

	var fees float64
	for _, tx := range drained {
		s.evHandler("state: MinePending: include: tx[%s]", tx)

		trans = append(trans, tx)
		fees += tx.Fee
	}

	// The fee reward comes last and only exists when there is a fee to pay.
	if fees > 0 {
		trans = append(trans, database.NewTx(database.FeesSender, minerAddress, fees, 0))
	}

	block, err := s.mineNextBlock(ctx, trans)
	if err != nil {
		s.mu.Lock()
		s.mempool.Restore(drained)
		s.mu.Unlock()

		s.evHandler("state: MinePending: ERROR: restored[%d]: %s", len(drained), err)
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = append(s.chain, block)
	s.retargetDifficulty()

	return block.Copy(), nil
}

// =============================================================================

// mineNextBlock constructs the block that follows the current tail of the
// chain and performs the proof of work. The state lock is only held to read
// the tail and difficulty, not while searching. The caller must hold miningMu.
func (s *State) mineNextBlock(ctx context.Context, trans []database.Tx) (database.Block, error) {
	s.mu.Lock()
	if len(s.chain) == 0 {
		s.mu.Unlock()
		return database.Block{}, ErrChainEmpty
	}
	tail := s.chain[len(s.chain)-1]
	difficulty := s.difficulty
	s.mu.Unlock()

	block := database.NewBlock(tail.Index+1, trans, tail.Hash, 0)
	if err := block.Mine(ctx, difficulty, s.evHandler); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
