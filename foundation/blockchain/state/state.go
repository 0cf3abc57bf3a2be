// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Set of errors returned by the state package.
var (
	ErrInvalidDifficulty = genesis.ErrInvalidDifficulty
	ErrChainEmpty        = errors.New("chain has no genesis block")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis   genesis.Genesis
	Now       func() time.Time // Clock used for difficulty retargeting, defaults to time.Now.
	EvHandler EventHandler
}

// State manages the blockchain. The chain, the mempool, the difficulty and
// the time of the last mined block are one aggregate guarded by mu. Every
// exported method acquires mu for its whole duration, except that the proof
// of work search runs outside of it.
type State struct {
	genesis   genesis.Genesis
	now       func() time.Time
	evHandler EventHandler

	mu         sync.Mutex
	chain      []database.Block
	mempool    *mempool.Mempool
	difficulty uint
	lastMined  time.Time

	// miningMu allows one block to be mined at a time so the tail of the chain
	// can't move between picking a parent and appending the solved block.
	miningMu sync.Mutex
}

// New constructs a ledger, mining the genesis block at the configured
// difficulty before returning. The genesis settings must pass validation.
func New(cfg Config) (*State, error) {
	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// The genesis block has no real predecessor and no transactions. It is
	// held to the same proof of work rule as every other block.
	ev("state: New: mining genesis: difficulty[%d]", cfg.Genesis.Difficulty)

	genesisBlock := database.NewBlock(0, []database.Tx{}, database.GenesisPrevHash, 0)
	if err := genesisBlock.Mine(context.Background(), cfg.Genesis.Difficulty, ev); err != nil {
		return nil, err
	}

	state := State{
		genesis:    cfg.Genesis,
		now:        now,
		evHandler:  ev,
		chain:      []database.Block{genesisBlock},
		mempool:    mempool.New(),
		difficulty: cfg.Genesis.Difficulty,
		lastMined:  now(),
	}

	return &state, nil
}
