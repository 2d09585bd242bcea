package envseal

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used for key and nonce generation.
// It defaults to crypto/rand but can be overridden for testing.
var randReader io.Reader = rand.Reader

// PublicKey is a raw public key tagged with its algorithm. Keys are value
// types: created per operation, never mutated after construction.
type PublicKey struct {
	// Alg is the algorithm the key belongs to.
	Alg Algorithm
	// Bytes is the raw key material. 33-byte compressed SEC1 for ES256K,
	// 32 bytes for EdDSA and ECDH-ES.
	Bytes []byte
}

// PrivateKey is a raw private key tagged with its algorithm.
type PrivateKey struct {
	// Alg is the algorithm the key belongs to.
	Alg Algorithm
	// Bytes is the raw key material: a 32-byte scalar for ES256K and
	// ECDH-ES, a 32-byte seed for EdDSA.
	Bytes []byte
}

// NewPublicKey builds a tagged public key, validating the byte length against
// the algorithm's fixed key size.
func NewPublicKey(alg Algorithm, b []byte) (PublicKey, error) {
	info, err := ResolveAlgorithm(alg)
	if err != nil {
		return PublicKey{}, err
	}
	if len(b) != info.PublicKeySize {
		return PublicKey{}, malformed(fmt.Sprintf("%s public key must be %d bytes, got %d", alg, info.PublicKeySize, len(b)))
	}
	return PublicKey{Alg: alg, Bytes: append([]byte(nil), b...)}, nil
}

// NewPrivateKey builds a tagged private key, validating the byte length
// against the algorithm's fixed key size.
func NewPrivateKey(alg Algorithm, b []byte) (PrivateKey, error) {
	info, err := ResolveAlgorithm(alg)
	if err != nil {
		return PrivateKey{}, err
	}
	if len(b) != info.PrivateKeySize {
		return PrivateKey{}, malformed(fmt.Sprintf("%s private key must be %d bytes, got %d", alg, info.PrivateKeySize, len(b)))
	}
	return PrivateKey{Alg: alg, Bytes: append([]byte(nil), b...)}, nil
}

// GenerateKey creates a fresh key pair for the given algorithm.
func GenerateKey(alg Algorithm) (PublicKey, PrivateKey, error) {
	info, err := ResolveAlgorithm(alg)
	if err != nil {
		return PublicKey{}, PrivateKey{}, err
	}
	pub, priv, err := info.generate()
	if err != nil {
		return PublicKey{}, PrivateKey{}, fmt.Errorf("generate %s key: %w", alg, err)
	}
	return PublicKey{Alg: alg, Bytes: pub}, PrivateKey{Alg: alg, Bytes: priv}, nil
}

// checkKeyAlg verifies a key's algorithm tag against the algorithm an
// operation expects. A mismatch is never coerced.
func checkKeyAlg(want, got Algorithm) error {
	if want != got {
		return &KeyMismatchError{Want: want, Got: got}
	}
	return nil
}
