// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoPrivateKey is returned when signing is attempted without a key.
var ErrNoPrivateKey = errors.New("private key is required")

// =============================================================================

// Sign hashes the payload with SHA-256 and signs the hash with the specified
// secp256k1 private key. The nonce is derived deterministically (RFC6979) and
// the signature is normalized to a low S value, so the same key and payload
// always produce the same DER encoded bytes.
func Sign(payload []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	if privateKey == nil || privateKey.D == nil {
		return nil, ErrNoPrivateKey
	}

	hash := sha256.Sum256(payload)

	key := secp256k1.PrivKeyFromBytes(crypto.FromECDSA(privateKey))
	defer key.Zero()

	sig := secpecdsa.Sign(key, hash[:])

	return sig.Serialize(), nil
}

// Address returns the hex encoded, 33 byte compressed form of the public key.
// This is the identity an account is known by on the ledger.
func Address(publicKey ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.CompressPubkey(&publicKey))
}

// SignatureString returns the signature as a hex string.
func SignatureString(sig []byte) string {
	return hex.EncodeToString(sig)
}
