package wallet

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// FeeRate is the share of the amount charged as a fee on every send.
const FeeRate = 0.01

// ErrInsufficientFunds is returned when the sender's confirmed balance can't
// cover the amount plus the fee.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Balancer reports the confirmed balance of an address.
type Balancer interface {
	BalanceOf(address string) float64
}

// Ledger is the part of the ledger a wallet needs to send funds.
type Ledger interface {
	Balancer
	Submit(tx database.Tx)
}

// Fee returns the fee charged for sending the amount.
func Fee(amount float64) float64 {
	return amount * FeeRate
}

// CheckFunds verifies the sender's confirmed balance covers the amount plus
// the fee. Transactions still waiting in the mempool are not considered.
func CheckFunds(l Balancer, sender string, amount float64, fee float64) error {
	balance := l.BalanceOf(sender)
	if amount+fee > balance {
		return fmt.Errorf("%w: sender[%s] balance[%v] need[%v]", ErrInsufficientFunds, sender, balance, amount+fee)
	}

	return nil
}

// SignTx signs the digest of the transaction and stores the hex encoded
// signature on the returned copy.
func (w *Wallet) SignTx(tx database.Tx) (database.Tx, error) {
	sig, err := w.Sign(tx.Digest())
	if err != nil {
		return database.Tx{}, fmt.Errorf("signing tx: %w", err)
	}

	tx.Signature = signature.SignatureString(sig)

	return tx, nil
}

// Send builds a transaction from the wallet to the receiver, signs it and
// submits it to the ledger. The sender must hold enough confirmed funds to
// cover the amount plus the fee.
func Send(l Ledger, from *Wallet, receiver string, amount float64) (database.Tx, error) {
	sender := from.Address()
	fee := Fee(amount)

	if err := CheckFunds(l, sender, amount, fee); err != nil {
		return database.Tx{}, err
	}

	tx, err := from.SignTx(database.NewTx(sender, receiver, amount, fee))
	if err != nil {
		return database.Tx{}, err
	}

	l.Submit(tx)

	return tx, nil
}
