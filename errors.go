package envseal

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrUnsupportedAlgorithm is returned when an algorithm identifier is not
	// in the supported set. This is fatal and never retryable; there is no
	// fallback to another scheme.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrMalformedEnvelope is returned when an envelope fails structural
	// parsing: wrong segment count, padded or non-canonical base64url,
	// truncated binary structure, or a field with the wrong length.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrInvalidSignature is returned when signature verification fails for
	// any reason. Length errors, malformed signature encodings, and genuine
	// mismatches are deliberately indistinguishable.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrDecryptionFailed is returned when authenticated decryption fails.
	// Header, ciphertext, and tag failures are deliberately
	// indistinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrKeyMismatch is returned when a key's algorithm tag does not match
	// the algorithm an operation expects. Keys are never coerced across
	// algorithms.
	ErrKeyMismatch = errors.New("key algorithm mismatch")

	// ErrSignerUnavailable is returned when a remote or hardware signing
	// backend fails transiently. Callers may retry.
	ErrSignerUnavailable = errors.New("signer unavailable")

	// ErrKeyNotFound is returned by a KeyResolver when no public key exists
	// for the requested key ID.
	ErrKeyNotFound = errors.New("key not found")
)

// EnvelopeError is implemented by all typed errors in this package.
type EnvelopeError interface {
	error
	EnvelopeError() // marker method
}

// MalformedEnvelopeError carries the structural reason an envelope was
// rejected. The reason describes the parse failure, never anything about key
// material or signature validity.
type MalformedEnvelopeError struct {
	Reason string
	Err    error
}

func (e *MalformedEnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed envelope: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed envelope: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *MalformedEnvelopeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *MalformedEnvelopeError) Is(target error) bool {
	return target == ErrMalformedEnvelope
}

// EnvelopeError implements the EnvelopeError interface.
func (e *MalformedEnvelopeError) EnvelopeError() {}

// KeyMismatchError reports a key tagged for one algorithm supplied to an
// operation expecting another.
type KeyMismatchError struct {
	Want Algorithm
	Got  Algorithm
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("key algorithm mismatch: want %s, got %s", e.Want, e.Got)
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyMismatchError) Is(target error) bool {
	return target == ErrKeyMismatch
}

// EnvelopeError implements the EnvelopeError interface.
func (e *KeyMismatchError) EnvelopeError() {}

// SignerUnavailableError wraps a transient failure from a signing backend.
type SignerUnavailableError struct {
	Err error
}

func (e *SignerUnavailableError) Error() string {
	return fmt.Sprintf("signer unavailable: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *SignerUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *SignerUnavailableError) Is(target error) bool {
	return target == ErrSignerUnavailable
}

// EnvelopeError implements the EnvelopeError interface.
func (e *SignerUnavailableError) EnvelopeError() {}

// malformed is a shorthand constructor used throughout the codecs.
func malformed(reason string) error {
	return &MalformedEnvelopeError{Reason: reason}
}
