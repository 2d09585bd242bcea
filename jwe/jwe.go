// Package jwe implements the compact text encryption envelope: five
// unpadded base64url segments joined by '.',
// header.encryptedkey.nonce.ciphertext.tag. The encrypted-key segment is
// empty because key agreement is direct ECDH-ES: the content key is derived
// from the shared secret, never transported.
//
// The content-encryption key is bound to the envelope header: the canonical
// header bytes salt the key derivation and the base64url header segment is
// the AEAD associated data. Replaying a ciphertext under a modified header
// fails decryption.
package jwe

import (
	"encoding/json"
	"fmt"
	"strings"

	envseal "github.com/envseal/envseal-go"
	"github.com/envseal/envseal-go/internal/b64"
)

// Header is the protected header of an encryption envelope. Canonical form
// is the JSON encoding of this struct; field order is fixed by declaration
// order.
type Header struct {
	// Algorithm is the key-agreement scheme, always ECDH-ES.
	Algorithm envseal.Algorithm `json:"alg"`
	// Encryption is the content-cipher identifier.
	Encryption envseal.ContentCipher `json:"enc"`
	// EphemeralKey is the sender's ephemeral public key, base64url raw
	// bytes.
	EphemeralKey string `json:"epk"`
	// KeyID identifies the recipient key. Optional.
	KeyID string `json:"kid,omitempty"`
}

// Envelope is a parsed encryption envelope. Immutable once constructed; the
// original header segment is retained because the derived key and the AEAD
// associated data both depend on its exact bytes.
type Envelope struct {
	// Header is the decoded protected header.
	Header Header
	// Nonce is the AEAD nonce.
	Nonce []byte
	// Ciphertext is the encrypted payload, without the tag.
	Ciphertext []byte
	// Tag is the AEAD authentication tag.
	Tag []byte

	rawHeader string
}

// Option configures encoding.
type Option func(*encodeConfig)

type encodeConfig struct {
	enc   envseal.ContentCipher
	keyID string
}

// WithContentCipher selects the content cipher. Defaults to A256GCM.
func WithContentCipher(enc envseal.ContentCipher) Option {
	return func(c *encodeConfig) {
		c.enc = enc
	}
}

// WithKeyID sets the recipient key identifier in the header.
func WithKeyID(keyID string) Option {
	return func(c *encodeConfig) {
		c.keyID = keyID
	}
}

// Encode encrypts payload for the recipient public key and assembles the
// compact envelope. A fresh ephemeral key pair and a fresh random nonce are
// generated per call.
func Encode(payload []byte, recipient envseal.PublicKey, opts ...Option) (string, error) {
	cfg := encodeConfig{enc: envseal.A256GCM}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := envseal.ResolveCipher(cfg.enc); err != nil {
		return "", err
	}
	if recipient.Alg != envseal.ECDHES {
		return "", &envseal.KeyMismatchError{Want: envseal.ECDHES, Got: recipient.Alg}
	}

	ephPub, ephPriv, err := envseal.GenerateEphemeralKey()
	if err != nil {
		return "", fmt.Errorf("generate ephemeral key: %w", err)
	}

	header := Header{
		Algorithm:    envseal.ECDHES,
		Encryption:   cfg.enc,
		EphemeralKey: b64.Encode(ephPub.Bytes),
		KeyID:        cfg.keyID,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	rawHeader := b64.Encode(headerJSON)

	secret, err := envseal.SharedSecret(ephPriv, recipient)
	if err != nil {
		return "", err
	}
	key, err := envseal.DeriveContentKey(secret, headerJSON, cfg.enc)
	if err != nil {
		return "", err
	}

	nonce, ciphertext, tag, err := envseal.Seal(cfg.enc, key, payload, []byte(rawHeader))
	if err != nil {
		return "", err
	}

	segments := []string{
		rawHeader,
		"", // no encrypted key with direct agreement
		b64.Encode(nonce),
		b64.Encode(ciphertext),
		b64.Encode(tag),
	}
	return strings.Join(segments, "."), nil
}

// Decode parses a compact encryption envelope without decrypting it.
func Decode(token string) (*Envelope, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 {
		return nil, &envseal.MalformedEnvelopeError{
			Reason: fmt.Sprintf("expected 5 segments, got %d", len(parts)),
		}
	}
	if parts[1] != "" {
		return nil, &envseal.MalformedEnvelopeError{Reason: "encrypted key must be empty for ECDH-ES"}
	}

	headerJSON, err := b64.Decode(parts[0])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "header segment", Err: err}
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "header JSON", Err: err}
	}
	if header.Algorithm != envseal.ECDHES {
		return nil, fmt.Errorf("%w: %q", envseal.ErrUnsupportedAlgorithm, header.Algorithm)
	}
	if _, err := envseal.ResolveCipher(header.Encryption); err != nil {
		return nil, err
	}

	nonce, err := b64.Decode(parts[2])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "nonce segment", Err: err}
	}
	if len(nonce) != envseal.NonceSize {
		return nil, &envseal.MalformedEnvelopeError{
			Reason: fmt.Sprintf("nonce must be %d bytes, got %d", envseal.NonceSize, len(nonce)),
		}
	}

	ciphertext, err := b64.Decode(parts[3])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "ciphertext segment", Err: err}
	}

	tag, err := b64.Decode(parts[4])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "tag segment", Err: err}
	}
	if len(tag) != envseal.TagSize {
		return nil, &envseal.MalformedEnvelopeError{
			Reason: fmt.Sprintf("tag must be %d bytes, got %d", envseal.TagSize, len(tag)),
		}
	}

	return &Envelope{
		Header:     header,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Tag:        tag,
		rawHeader:  parts[0],
	}, nil
}

// Decrypt recovers the plaintext using the recipient's static private key.
// All authentication failures are reported as ErrDecryptionFailed without
// distinguishing header, ciphertext, or tag as the cause.
func (e *Envelope) Decrypt(recipient envseal.PrivateKey) ([]byte, error) {
	if recipient.Alg != envseal.ECDHES {
		return nil, &envseal.KeyMismatchError{Want: envseal.ECDHES, Got: recipient.Alg}
	}

	ephBytes, err := b64.Decode(e.Header.EphemeralKey)
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "ephemeral key", Err: err}
	}
	ephPub, err := envseal.NewPublicKey(envseal.ECDHES, ephBytes)
	if err != nil {
		return nil, err
	}

	headerJSON, err := b64.Decode(e.rawHeader)
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "header segment", Err: err}
	}

	secret, err := envseal.SharedSecret(recipient, ephPub)
	if err != nil {
		return nil, err
	}
	key, err := envseal.DeriveContentKey(secret, headerJSON, e.Header.Encryption)
	if err != nil {
		return nil, err
	}

	return envseal.Open(e.Header.Encryption, key, e.Nonce, e.Ciphertext, e.Tag, []byte(e.rawHeader))
}
