package envseal

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Verify checks a signature over payload using the supplied public key. The
// key's algorithm tag selects the scheme; it is never inferred from the
// signature. All verification failures, including wrong signature length and
// malformed encodings, collapse to ErrInvalidSignature.
func Verify(payload, sig []byte, pub PublicKey) error {
	info, err := ResolveAlgorithm(pub.Alg)
	if err != nil {
		return err
	}
	if info.verify == nil {
		return fmt.Errorf("%w: %s is not a signature algorithm", ErrKeyMismatch, pub.Alg)
	}
	if len(pub.Bytes) != info.PublicKeySize || len(sig) != info.SignatureSize {
		return ErrInvalidSignature
	}
	if err := info.verify(pub.Bytes, payload, sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// errVerifyFailed is internal to the primitives; Verify collapses it and
// every other primitive failure into ErrInvalidSignature.
var errVerifyFailed = errors.New("verification failed")

func signES256K(priv, payload []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, malformed(fmt.Sprintf("ES256K private key must be 32 bytes, got %d", len(priv)))
	}
	key := secp256k1.PrivKeyFromBytes(priv)
	digest := sha256.Sum256(payload)

	// RFC 6979 deterministic nonce, low-S signature.
	sig := secpecdsa.Sign(key, digest[:])
	r := sig.R()
	s := sig.S()

	var out [64]byte
	r.PutBytes((*[32]byte)(out[:32]))
	s.PutBytes((*[32]byte)(out[32:]))
	return out[:], nil
}

func verifyES256K(pub, payload, sig []byte) error {
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return errVerifyFailed
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return errVerifyFailed
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return errVerifyFailed
	}
	if r.IsZero() || s.IsZero() {
		return errVerifyFailed
	}

	// Accept high-S inputs by normalizing before the check; signing always
	// emits low-S.
	if s.IsOverHalfOrder() {
		s.Negate()
	}

	digest := sha256.Sum256(payload)
	if !secpecdsa.NewSignature(&r, &s).Verify(digest[:], key) {
		return errVerifyFailed
	}
	return nil
}

func generateES256K() ([]byte, []byte, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, err
	}
	return key.PubKey().SerializeCompressed(), key.Serialize(), nil
}

func derivePublicES256K(priv []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, malformed(fmt.Sprintf("ES256K private key must be 32 bytes, got %d", len(priv)))
	}
	return secp256k1.PrivKeyFromBytes(priv).PubKey().SerializeCompressed(), nil
}

func signEdDSA(priv, payload []byte) ([]byte, error) {
	if len(priv) != ed25519.SeedSize {
		return nil, malformed(fmt.Sprintf("EdDSA private key must be %d bytes, got %d", ed25519.SeedSize, len(priv)))
	}
	key := ed25519.NewKeyFromSeed(priv)
	return ed25519.Sign(key, payload), nil
}

func verifyEdDSA(pub, payload, sig []byte) error {
	if !ed25519.Verify(ed25519.PublicKey(pub), payload, sig) {
		return errVerifyFailed
	}
	return nil
}

func generateEdDSA() ([]byte, []byte, error) {
	pub, priv, err := ed25519.GenerateKey(randReader)
	if err != nil {
		return nil, nil, err
	}
	return []byte(pub), priv.Seed(), nil
}

func derivePublicEdDSA(priv []byte) ([]byte, error) {
	if len(priv) != ed25519.SeedSize {
		return nil, malformed(fmt.Sprintf("EdDSA private key must be %d bytes, got %d", ed25519.SeedSize, len(priv)))
	}
	key := ed25519.NewKeyFromSeed(priv)
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("unexpected public key type")
	}
	return []byte(pub), nil
}
