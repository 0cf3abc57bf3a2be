package signature_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	address  = "02412ffaffb78f2931e193f1add952fcb84ceaa55c8491b3a71f25f89fbb482aaf"
	sigStr   = "3044022011190ab1220df22e5be2f70bd1e124efb7c7571127974fb674c1a9e0cab7f4f502206fbaa1a5ca56a823f8e403942d4ed70306426a2f8e0513855a81fbdb166fd191"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	payload := []byte("hello ledger")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(payload, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	str := signature.SignatureString(sig)
	if str != sigStr {
		t.Logf("got: %s", str)
		t.Logf("exp: %s", sigStr)
		t.Fatalf("Should get back the right signature string.")
	}

	parsed, err := secpecdsa.ParseDERSignature(sig)
	if err != nil {
		t.Fatalf("Should be able to parse the DER signature: %s", err)
	}

	pub, err := secp256k1.ParsePubKey(crypto.CompressPubkey(&pk.PublicKey))
	if err != nil {
		t.Fatalf("Should be able to parse the public key: %s", err)
	}

	hash := sha256.Sum256(payload)
	if !parsed.Verify(hash[:], pub) {
		t.Fatalf("Should be able to verify the signature over the SHA-256 of the payload.")
	}
}

func Test_SignConsistency(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig1, err := signature.Sign([]byte("Bill"), pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	sig2, err := signature.Sign([]byte("Bill"), pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	sig3, err := signature.Sign([]byte("Jill"), pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if hex.EncodeToString(sig1) != hex.EncodeToString(sig2) {
		t.Fatalf("Should get the same signature for the same payload.")
	}

	if hex.EncodeToString(sig1) == hex.EncodeToString(sig3) {
		t.Fatalf("Should get a different signature for a different payload.")
	}

	if _, err := signature.Sign([]byte("Bill"), nil); err == nil {
		t.Fatalf("Should not be able to sign without a key.")
	}
}

func Test_Address(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	addr := signature.Address(pk.PublicKey)
	if addr != address {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", address)
		t.Fatalf("Should get back the right address.")
	}
}
