// Package jws implements the compact text signature envelope: three
// unpadded base64url segments joined by '.', header.payload.signature.
//
// Decoding and verification are separate steps. Decode parses structure
// only; trust decisions happen in Verify or VerifyWithResolver against an
// explicitly supplied or resolved public key.
package jws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	envseal "github.com/envseal/envseal-go"
	"github.com/envseal/envseal-go/internal/b64"
)

// Type is the envelope media type carried in the "typ" header parameter.
type Type string

const (
	// TypeJWT is the general-purpose token type and the default.
	TypeJWT Type = "jwt"
	// TypeProofJWT is the proof-of-possession token type.
	TypeProofJWT Type = "openid4vci-proof+jwt"
	// TypeAuthzReqJWT is the authorization request object token type.
	TypeAuthzReqJWT Type = "oauth-authz-req+jwt"
)

// Header is the protected header of a signature envelope. The recognized
// field set is closed; canonical form is the JSON encoding of this struct,
// whose field order is fixed by declaration order, so two semantically equal
// headers always serialize to identical bytes.
type Header struct {
	// Algorithm is the signature scheme identifier.
	Algorithm envseal.Algorithm `json:"alg"`
	// Type is the envelope media type.
	Type Type `json:"typ,omitempty"`
	// KeyID identifies the verification key. Optional.
	KeyID string `json:"kid,omitempty"`
}

// Envelope is a parsed signature envelope. It retains the exact segment
// bytes it was built or parsed from, so re-serialization and verification
// are byte-exact. An Envelope is immutable once constructed.
type Envelope struct {
	// Header is the decoded protected header.
	Header Header
	// Payload is the decoded payload bytes.
	Payload []byte
	// Signature is the decoded signature bytes.
	Signature []byte

	rawHeader  string
	rawPayload string
	rawSig     string
}

// Option configures encoding.
type Option func(*encodeConfig)

type encodeConfig struct {
	typ Type
}

// WithType sets the "typ" header parameter. Defaults to TypeJWT.
func WithType(typ Type) Option {
	return func(c *encodeConfig) {
		c.typ = typ
	}
}

// Encode signs payload with the supplied Signer and assembles the compact
// envelope. The signature is computed over the ASCII bytes
// "b64url(header).b64url(payload)".
func Encode(ctx context.Context, payload []byte, signer envseal.Signer, opts ...Option) (string, error) {
	cfg := encodeConfig{typ: TypeJWT}
	for _, opt := range opts {
		opt(&cfg)
	}

	alg := signer.Algorithm()
	if _, err := envseal.ResolveAlgorithm(alg); err != nil {
		return "", err
	}

	header := Header{
		Algorithm: alg,
		Type:      cfg.typ,
		KeyID:     signer.KeyID(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}

	rawHeader := b64.Encode(headerJSON)
	rawPayload := b64.Encode(payload)
	signingInput := rawHeader + "." + rawPayload

	sig, err := signer.Sign(ctx, []byte(signingInput))
	if err != nil {
		return "", fmt.Errorf("sign envelope: %w", err)
	}

	return signingInput + "." + b64.Encode(sig), nil
}

// Decode parses a compact envelope without verifying it. Inputs with a
// wrong segment count, padding characters, or non-canonical base64url are
// rejected with ErrMalformedEnvelope.
func Decode(token string) (*Envelope, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &envseal.MalformedEnvelopeError{
			Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts)),
		}
	}

	headerJSON, err := b64.Decode(parts[0])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "header segment", Err: err}
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "header JSON", Err: err}
	}
	if _, err := envseal.ResolveAlgorithm(header.Algorithm); err != nil {
		return nil, err
	}

	payload, err := b64.Decode(parts[1])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "payload segment", Err: err}
	}

	sig, err := b64.Decode(parts[2])
	if err != nil {
		return nil, &envseal.MalformedEnvelopeError{Reason: "signature segment", Err: err}
	}

	return &Envelope{
		Header:     header,
		Payload:    payload,
		Signature:  sig,
		rawHeader:  parts[0],
		rawPayload: parts[1],
		rawSig:     parts[2],
	}, nil
}

// SigningInput returns the exact bytes the signature covers.
func (e *Envelope) SigningInput() []byte {
	return []byte(e.rawHeader + "." + e.rawPayload)
}

// String reassembles the compact form from the original segments.
func (e *Envelope) String() string {
	return e.rawHeader + "." + e.rawPayload + "." + e.rawSig
}

// Verify checks the envelope signature against an explicitly supplied public
// key. The key's algorithm tag must match the header's "alg" or the check
// fails with ErrKeyMismatch.
func (e *Envelope) Verify(pub envseal.PublicKey) error {
	if pub.Alg != e.Header.Algorithm {
		return &envseal.KeyMismatchError{Want: e.Header.Algorithm, Got: pub.Alg}
	}
	return envseal.Verify(e.SigningInput(), e.Signature, pub)
}

// VerifyWithResolver resolves the header's "kid" through the supplied
// KeyResolver and verifies against the resolved key.
func VerifyWithResolver(ctx context.Context, e *Envelope, resolver envseal.KeyResolver) error {
	if e.Header.KeyID == "" {
		return &envseal.MalformedEnvelopeError{Reason: "missing kid header"}
	}
	pub, err := resolver.Resolve(ctx, e.Header.KeyID)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", e.Header.KeyID, err)
	}
	return e.Verify(pub)
}
