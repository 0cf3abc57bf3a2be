package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Index         uint64 `json:"index"`           // Position of the block in the chain, genesis is 0.
	TimeStamp     int64  `json:"timestamp"`       // Unix seconds when the block was constructed.
	Trans         []Tx   `json:"trans"`           // Ordered transactions confirmed by this block.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Hash          string `json:"hash"`            // Hash of this block, empty until mined.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
}

// NewBlock constructs a block that still needs to be mined. The timestamp is
// taken from the wall clock.
func NewBlock(index uint64, trans []Tx, prevBlockHash string, nonce uint64) Block {
	return Block{
		Index:         index,
		TimeStamp:     time.Now().UTC().Unix(),
		Trans:         trans,
		PrevBlockHash: prevBlockHash,
		Nonce:         nonce,
	}
}

// ComputeHash calculates the hex encoded SHA-256 of the block contents. The
// stored Hash field is not part of the calculation.
func (b Block) ComputeHash() string {
	data := fmt.Sprintf("%d%d%s%s%d", b.Index, b.TimeStamp, renderTrans(b.Trans), b.PrevBlockHash, b.Nonce)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Mine does the work of finding a nonce that produces a hash with the
// specified number of leading zeros. The search starts at the block's current
// nonce. Pointer semantics are being used since a nonce is being discovered.
// Only a cancelled context stops the search early.
func (b *Block) Mine(ctx context.Context, difficulty uint, ev func(v string, args ...any)) error {
	ev("database: Mine: MINING: started: blk[%d]: difficulty[%d]", b.Index, difficulty)
	defer ev("database: Mine: MINING: completed: blk[%d]", b.Index)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we get asked to stop trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED: attempts[%d]", attempts)
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		b.Hash = b.ComputeHash()
		if isHashSolved(difficulty, b.Hash) {
			break
		}

		b.Nonce++
	}

	ev("database: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevBlockHash, b.Hash, attempts)
	ev("Block mined: %s", b.Hash)

	return nil
}

// IsSolved reports whether the stored hash satisfies the specified difficulty.
func (b Block) IsSolved(difficulty uint) bool {
	return isHashSolved(difficulty, b.Hash)
}

// Copy returns a block that shares no memory with the original.
func (b Block) Copy() Block {
	trans := make([]Tx, len(b.Trans))
	copy(trans, b.Trans)
	b.Trans = trans

	return b
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}
