package cose

import (
	"fmt"

	envseal "github.com/envseal/envseal-go"
)

// EncryptedMessage is a parsed binary encryption envelope. Immutable once
// constructed; the raw protected header bytes are retained because both the
// key derivation and the AEAD associated data depend on their exact value.
type EncryptedMessage struct {
	// Encryption is the content-cipher identifier from the protected header.
	Encryption envseal.ContentCipher
	// KeyID identifies the recipient key. Empty when absent.
	KeyID string
	// EphemeralKey is the sender's ephemeral X25519 public key.
	EphemeralKey []byte
	// Nonce is the AEAD nonce.
	Nonce []byte
	// Ciphertext is the encrypted payload, without the tag.
	Ciphertext []byte
	// Tag is the AEAD authentication tag.
	Tag []byte

	protected []byte
}

// Option configures encryption.
type Option func(*encryptConfig)

type encryptConfig struct {
	enc   envseal.ContentCipher
	keyID string
}

// WithContentCipher selects the content cipher. Defaults to A256GCM.
func WithContentCipher(enc envseal.ContentCipher) Option {
	return func(c *encryptConfig) {
		c.enc = enc
	}
}

// WithKeyID sets the recipient key identifier in the protected header.
func WithKeyID(keyID string) Option {
	return func(c *encryptConfig) {
		c.keyID = keyID
	}
}

// Encrypt encrypts payload for the recipient public key and encodes the
// binary envelope. A fresh ephemeral key pair and a fresh random nonce are
// generated per call. The content key derivation is salted with the
// protected header bytes.
func Encrypt(payload []byte, recipient envseal.PublicKey, opts ...Option) ([]byte, error) {
	cfg := encryptConfig{enc: envseal.A256GCM}
	for _, opt := range opts {
		opt(&cfg)
	}
	cipherID, err := encID(cfg.enc)
	if err != nil {
		return nil, err
	}
	if recipient.Alg != envseal.ECDHES {
		return nil, &envseal.KeyMismatchError{Want: envseal.ECDHES, Got: recipient.Alg}
	}

	ephPub, ephPriv, err := envseal.GenerateEphemeralKey()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	protected, err := encMode.Marshal(protectedHeader{
		Alg: algECDHES,
		Enc: cipherID,
		KID: []byte(cfg.keyID),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal protected header: %w", err)
	}

	secret, err := envseal.SharedSecret(ephPriv, recipient)
	if err != nil {
		return nil, err
	}
	key, err := envseal.DeriveContentKey(secret, protected, cfg.enc)
	if err != nil {
		return nil, err
	}

	aad, err := encAAD(protected)
	if err != nil {
		return nil, err
	}
	nonce, ciphertext, tag, err := envseal.Seal(cfg.enc, key, payload, aad)
	if err != nil {
		return nil, err
	}

	out, err := encMode.Marshal(encryptedBody{
		Protected: protected,
		Unprotected: unprotectedHeader{
			Nonce:        nonce,
			EphemeralKey: ephPub.Bytes,
		},
		Ciphertext: append(ciphertext, tag...),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return out, nil
}

// DecodeEncrypted parses a binary encryption envelope without decrypting it.
func DecodeEncrypted(data []byte) (*EncryptedMessage, error) {
	var body encryptedBody
	if err := decMode.Unmarshal(data, &body); err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "envelope structure", Err: err}
	}

	var header protectedHeader
	if err := decMode.Unmarshal(body.Protected, &header); err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "protected header", Err: err}
	}
	alg, err := algFromID(header.Alg)
	if err != nil {
		return nil, err
	}
	if alg != envseal.ECDHES {
		return nil, fmt.Errorf("%w: %s is not a key-agreement algorithm", envseal.ErrMalformedEnvelope, alg)
	}
	enc, err := encFromID(header.Enc)
	if err != nil {
		return nil, err
	}

	if len(body.Unprotected.Nonce) != envseal.NonceSize {
		return nil, &envseal.MalformedEnvelopeError{
			Reason: fmt.Sprintf("nonce must be %d bytes, got %d", envseal.NonceSize, len(body.Unprotected.Nonce)),
		}
	}
	if len(body.Ciphertext) < envseal.TagSize {
		return nil, &envseal.MalformedEnvelopeError{Reason: "ciphertext shorter than tag"}
	}
	split := len(body.Ciphertext) - envseal.TagSize

	return &EncryptedMessage{
		Encryption:   enc,
		KeyID:        string(header.KID),
		EphemeralKey: body.Unprotected.EphemeralKey,
		Nonce:        body.Unprotected.Nonce,
		Ciphertext:   body.Ciphertext[:split],
		Tag:          body.Ciphertext[split:],
		protected:    body.Protected,
	}, nil
}

// Decrypt recovers the plaintext using the recipient's static private key.
// All authentication failures are reported as ErrDecryptionFailed.
func (m *EncryptedMessage) Decrypt(recipient envseal.PrivateKey) ([]byte, error) {
	if recipient.Alg != envseal.ECDHES {
		return nil, &envseal.KeyMismatchError{Want: envseal.ECDHES, Got: recipient.Alg}
	}

	ephPub, err := envseal.NewPublicKey(envseal.ECDHES, m.EphemeralKey)
	if err != nil {
		return nil, err
	}

	secret, err := envseal.SharedSecret(recipient, ephPub)
	if err != nil {
		return nil, err
	}
	key, err := envseal.DeriveContentKey(secret, m.protected, m.Encryption)
	if err != nil {
		return nil, err
	}

	aad, err := encAAD(m.protected)
	if err != nil {
		return nil, err
	}
	return envseal.Open(m.Encryption, key, m.Nonce, m.Ciphertext, m.Tag, aad)
}
