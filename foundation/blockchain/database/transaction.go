package database

import (
	"crypto/sha256"
	"fmt"
)

// Reserved sender values for transactions the ledger creates itself. No key
// material exists for these accounts.
const (
	SystemSender = "system"
	FeesSender   = "fees"
)

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Sender    string  `json:"sender"`    // Address of the account paying the amount.
	Receiver  string  `json:"receiver"`  // Address of the account receiving the amount.
	Amount    float64 `json:"amount"`    // Value moved from the sender to the receiver.
	Fee       float64 `json:"fee"`       // Value offered to the miner for including the transaction.
	Signature string  `json:"signature"` // Hex encoded signature over the digest, set by the wallet.
}

// NewTx constructs a new unsigned transaction. No validation is performed on
// the amount or fee.
func NewTx(sender string, receiver string, amount float64, fee float64) Tx {
	return Tx{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
		Fee:      fee,
	}
}

// Digest returns the SHA-256 of the economic fields of the transaction. This
// is the payload a wallet signs. The signature is not part of the digest.
func (tx Tx) Digest() []byte {
	data := tx.Sender + tx.Receiver + formatDisplay(tx.Amount) + formatDisplay(tx.Fee)

	hash := sha256.Sum256([]byte(data))
	return hash[:]
}

// IsReward reports whether the transaction was created by the ledger to pay
// a miner.
func (tx Tx) IsReward() bool {
	return tx.Sender == SystemSender || tx.Sender == FeesSender
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.Sender, tx.Receiver, formatDisplay(tx.Amount))
}
