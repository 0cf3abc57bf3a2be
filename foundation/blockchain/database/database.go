// Package database defines the values that make up the blockchain, the
// transactions and the blocks that batch them, along with the hashing and
// proof of work rules that bind blocks into a chain.
package database

// NoopEvent can be passed as an event handler when the caller has no
// interest in events.
func NoopEvent(v string, args ...any) {}

// ValidateLink checks that block is a correct successor of prev: it must
// reference prev's hash and its stored hash must recompute from its own
// fields. The returned error describes the first problem found.
func ValidateLink(prev Block, block Block) error {
	if block.PrevBlockHash != prev.Hash {
		return &LinkError{Index: block.Index, Reason: "previous hash does not match parent", Got: block.PrevBlockHash, Exp: prev.Hash}
	}

	if hash := block.ComputeHash(); block.Hash != hash {
		return &LinkError{Index: block.Index, Reason: "stored hash does not match contents", Got: block.Hash, Exp: hash}
	}

	return nil
}
