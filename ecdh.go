package envseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/cloudflare/circl/dh/x25519"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// GenerateEphemeralKey creates a fresh X25519 key pair for a single
// encryption operation. The private half must be discarded after use.
func GenerateEphemeralKey() (PublicKey, PrivateKey, error) {
	return GenerateKey(ECDHES)
}

// SharedSecret computes the X25519 shared secret between a private key and a
// peer public key. Both keys must be tagged ECDH-ES.
func SharedSecret(priv PrivateKey, pub PublicKey) ([]byte, error) {
	if err := checkKeyAlg(ECDHES, priv.Alg); err != nil {
		return nil, err
	}
	if err := checkKeyAlg(ECDHES, pub.Alg); err != nil {
		return nil, err
	}
	if len(priv.Bytes) != x25519.Size || len(pub.Bytes) != x25519.Size {
		return nil, malformed("ECDH-ES keys must be 32 bytes")
	}

	var secret, public, shared x25519.Key
	copy(secret[:], priv.Bytes)
	copy(public[:], pub.Bytes)
	if !x25519.Shared(&shared, &secret, &public) {
		// Low-order peer point. Reported as a decryption failure so callers
		// cannot distinguish it from a tag mismatch.
		return nil, ErrDecryptionFailed
	}
	return shared[:], nil
}

// DeriveContentKey derives the content-encryption key from an ECDH shared
// secret with HKDF-SHA-256. The canonical header bytes are the HKDF salt and
// the content-cipher identifier is the info string, binding the key to the
// envelope context: the same ciphertext under a different header derives a
// different key and fails to authenticate.
func DeriveContentKey(secret, headerBytes []byte, enc ContentCipher) ([]byte, error) {
	if _, err := ResolveCipher(enc); err != nil {
		return nil, err
	}
	reader := hkdf.New(sha256.New, secret, headerBytes, []byte(enc))
	key := make([]byte, ContentKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive content key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with the selected content cipher under key,
// generating a fresh random nonce. It returns the nonce, ciphertext, and
// authentication tag separately.
func Seal(enc ContentCipher, key, plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error) {
	aead, err := newAEAD(enc, key)
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, aad)
	ciphertext = sealed[:len(sealed)-TagSize]
	tag = sealed[len(sealed)-TagSize:]
	return nonce, ciphertext, tag, nil
}

// Open authenticates and decrypts ciphertext+tag. Any failure, including a
// wrong nonce or tag length, is reported as ErrDecryptionFailed without
// revealing which input was at fault.
func Open(enc ContentCipher, key, nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	aead, err := newAEAD(enc, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newAEAD(enc ContentCipher, key []byte) (cipher.AEAD, error) {
	if _, err := ResolveCipher(enc); err != nil {
		return nil, err
	}
	if len(key) != ContentKeySize {
		return nil, malformed(fmt.Sprintf("content key must be %d bytes, got %d", ContentKeySize, len(key)))
	}

	switch enc {
	case A256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case C20P:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("%w: content cipher %q", ErrUnsupportedAlgorithm, enc)
	}
}

func generateX25519() ([]byte, []byte, error) {
	var secret, public x25519.Key
	if _, err := io.ReadFull(randReader, secret[:]); err != nil {
		return nil, nil, err
	}
	x25519.KeyGen(&public, &secret)
	return public[:], secret[:], nil
}

func derivePublicX25519(priv []byte) ([]byte, error) {
	if len(priv) != x25519.Size {
		return nil, malformed(fmt.Sprintf("ECDH-ES private key must be %d bytes, got %d", x25519.Size, len(priv)))
	}
	var secret, public x25519.Key
	copy(secret[:], priv)
	x25519.KeyGen(&public, &secret)
	return public[:], nil
}
