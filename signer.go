package envseal

import (
	"context"
	"fmt"
)

// Signer produces signatures over envelope signing input. Implementations
// may be backed by local key material or by a remote/hardware key store;
// Sign is the only operation in this package that may suspend on external
// I/O, so callers impose timeout and cancellation policy through ctx.
//
// A Signer shared across goroutines must be safe for concurrent use.
type Signer interface {
	// Sign signs the payload. Transient backend failures should be returned
	// as (or wrapped in) ErrSignerUnavailable so callers can decide retry
	// policy.
	Sign(ctx context.Context, payload []byte) ([]byte, error)

	// Algorithm reports the signature scheme this signer uses.
	Algorithm() Algorithm

	// PublicKey returns the public half of the signing key. Key rotation
	// means this should be read at the point of signing, not cached.
	PublicKey() (PublicKey, error)

	// KeyID is the identifier verifiers use to resolve the public key.
	// Empty when the signer has no stable identifier.
	KeyID() string
}

// LocalSigner signs with in-memory key material. It never suspends and is
// safe for concurrent use: the key is never mutated after construction.
type LocalSigner struct {
	priv  PrivateKey
	keyID string
}

// NewLocalSigner wraps a signature-scheme private key. keyID may be empty.
func NewLocalSigner(priv PrivateKey, keyID string) (*LocalSigner, error) {
	info, err := ResolveAlgorithm(priv.Alg)
	if err != nil {
		return nil, err
	}
	if info.sign == nil {
		return nil, fmt.Errorf("%w: %s is not a signature algorithm", ErrKeyMismatch, priv.Alg)
	}
	if len(priv.Bytes) != info.PrivateKeySize {
		return nil, malformed(fmt.Sprintf("%s private key must be %d bytes, got %d", priv.Alg, info.PrivateKeySize, len(priv.Bytes)))
	}
	return &LocalSigner{priv: priv, keyID: keyID}, nil
}

// Sign implements Signer.
func (s *LocalSigner) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := ResolveAlgorithm(s.priv.Alg)
	if err != nil {
		return nil, err
	}
	return info.sign(s.priv.Bytes, payload)
}

// Algorithm implements Signer.
func (s *LocalSigner) Algorithm() Algorithm {
	return s.priv.Alg
}

// PublicKey implements Signer.
func (s *LocalSigner) PublicKey() (PublicKey, error) {
	info, err := ResolveAlgorithm(s.priv.Alg)
	if err != nil {
		return PublicKey{}, err
	}
	pub, err := info.derivePublic(s.priv.Bytes)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{Alg: s.priv.Alg, Bytes: pub}, nil
}

// KeyID implements Signer.
func (s *LocalSigner) KeyID() string {
	return s.keyID
}
