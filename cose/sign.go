package cose

import (
	"context"
	"fmt"

	envseal "github.com/envseal/envseal-go"
)

// SignedMessage is a parsed binary signature envelope. Immutable once
// constructed; the raw protected header bytes are retained so verification
// covers exactly the bytes that were signed.
type SignedMessage struct {
	// Algorithm is the signature scheme from the protected header.
	Algorithm envseal.Algorithm
	// KeyID identifies the verification key. Empty when absent.
	KeyID string
	// Payload is the signed payload bytes.
	Payload []byte
	// Signature is the raw signature bytes.
	Signature []byte

	protected []byte
}

// Sign signs payload with the supplied Signer and encodes the binary
// envelope.
func Sign(ctx context.Context, payload []byte, signer envseal.Signer) ([]byte, error) {
	alg := signer.Algorithm()
	id, err := algID(alg)
	if err != nil {
		return nil, err
	}
	if _, err := envseal.ResolveAlgorithm(alg); err != nil {
		return nil, err
	}

	protected, err := encMode.Marshal(protectedHeader{
		Alg: id,
		KID: []byte(signer.KeyID()),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal protected header: %w", err)
	}

	input, err := sigInput(protected, payload)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("sign envelope: %w", err)
	}

	out, err := encMode.Marshal(signedBody{
		Protected: protected,
		Payload:   payload,
		Signature: sig,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return out, nil
}

// DecodeSigned parses a binary signature envelope without verifying it.
// Truncated or non-canonical input fails with ErrMalformedEnvelope.
func DecodeSigned(data []byte) (*SignedMessage, error) {
	var body signedBody
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
	if alg == envseal.ECDHES {
		return nil, fmt.Errorf("%w: %s is not a signature algorithm", envseal.ErrMalformedEnvelope, alg)
	}

	return &SignedMessage{
		Algorithm: alg,
		KeyID:     string(header.KID),
		Payload:   body.Payload,
		Signature: body.Signature,
		protected: body.Protected,
	}, nil
}

// Verify checks the message signature against an explicitly supplied public
// key.
func (m *SignedMessage) Verify(pub envseal.PublicKey) error {
	if pub.Alg != m.Algorithm {
		return &envseal.KeyMismatchError{Want: m.Algorithm, Got: pub.Alg}
	}
	input, err := sigInput(m.protected, m.Payload)
	if err != nil {
		return err
	}
	return envseal.Verify(input, m.Signature, pub)
}

// VerifyWithResolver resolves the message key ID through the supplied
// KeyResolver and verifies against the resolved key.
func VerifyWithResolver(ctx context.Context, m *SignedMessage, resolver envseal.KeyResolver) error {
	if m.KeyID == "" {
		return &envseal.MalformedEnvelopeError{Reason: "missing key id"}
	}
	pub, err := resolver.Resolve(ctx, m.KeyID)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", m.KeyID, err)
	}
	return m.Verify(pub)
}
