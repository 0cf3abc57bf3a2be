// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions waiting to be mined.
// Transactions are kept in submission order.
//
// A Mempool is not safe for concurrent use. It is owned by the state package,
// which guards it with the same lock that guards the chain, so a block never
// observes the mempool and the chain out of step with each other.
type Mempool struct {
	pool []database.Tx
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	return len(mp.pool)
}

// Push adds a transaction to the end of the pool. No checks are performed.
func (mp *Mempool) Push(tx database.Tx) int {
	mp.pool = append(mp.pool, tx)
	return len(mp.pool)
}

// Drain removes every transaction from the pool. The most recently pushed
// transaction is returned first.
func (mp *Mempool) Drain() []database.Tx {
	trans := make([]database.Tx, 0, len(mp.pool))
	for i := len(mp.pool) - 1; i >= 0; i-- {
		trans = append(trans, mp.pool[i])
	}

	mp.pool = nil

	return trans
}

// Restore puts back transactions previously returned by Drain, ahead of
// anything pushed since, so the pool looks as if the drain never happened.
func (mp *Mempool) Restore(drained []database.Tx) {
	if len(drained) == 0 {
		return
	}

	pool := make([]database.Tx, 0, len(drained)+len(mp.pool))
	for i := len(drained) - 1; i >= 0; i-- {
		pool = append(pool, drained[i])
	}

	mp.pool = append(pool, mp.pool...)
}

// Copy returns the transactions in submission order.
func (mp *Mempool) Copy() []database.Tx {
	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)
	return cpy
}
