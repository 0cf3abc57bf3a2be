// Package wallet provides the key management needed by accounts that
// transact on the ledger: an address derived from a secp256k1 public key and
// the ability to sign transaction payloads.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role represents the part a wallet plays in the network.
type Role int

// Set of roles a wallet can have.
const (
	Regular Role = iota
	Miner
)

// String implements the fmt.Stringer interface.
func (r Role) String() string {
	switch r {
	case Regular:
		return "regular"
	case Miner:
		return "miner"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts the text form of a role back into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "regular", "":
		return Regular, nil
	case "miner":
		return Miner, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// =============================================================================

// Wallet holds a private key and the role of its owner.
type Wallet struct {
	role       Role
	privateKey *ecdsa.PrivateKey
}

// New constructs a wallet with a freshly generated key.
func New(role Role) (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return FromPrivateKey(privateKey, role)
}

// FromPrivateKey constructs a wallet around an existing key.
func FromPrivateKey(privateKey *ecdsa.PrivateKey, role Role) (*Wallet, error) {
	if privateKey == nil {
		return nil, errors.New("private key is required")
	}

	w := Wallet{
		role:       role,
		privateKey: privateKey,
	}

	return &w, nil
}

// Load reads a hex encoded private key file, as written by Save.
func Load(path string, role Role) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("loading key %q: %w", path, err)
	}

	return FromPrivateKey(privateKey, role)
}

// Save writes the private key to the specified file.
func (w *Wallet) Save(path string) error {
	return crypto.SaveECDSA(path, w.privateKey)
}

// Role returns the role of the wallet owner.
func (w *Wallet) Role() Role {
	return w.role
}

// IsMiner reports whether the wallet belongs to a miner.
func (w *Wallet) IsMiner() bool {
	return w.role == Miner
}

// Address returns the address the ledger knows this wallet by.
func (w *Wallet) Address() string {
	return signature.Address(w.privateKey.PublicKey)
}

// Sign produces a signature over the SHA-256 of the payload.
func (w *Wallet) Sign(payload []byte) ([]byte, error) {
	return signature.Sign(payload, w.privateKey)
}
