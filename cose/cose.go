// Package cose implements the compact binary envelope formats: signed and
// encrypted messages as canonical integer-keyed CBOR structures.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer form, definite lengths only. The same logical
// message always produces identical bytes, so signatures and authentication
// tags are always computed over unambiguous input. Decoding forbids
// indefinite-length items and duplicate map keys.
//
// A signed message is the array
//
//	[protected bstr, unprotected map, payload bstr, signature bstr]
//
// and an encrypted message is the array
//
//	[protected bstr, unprotected map, ciphertext bstr]
//
// where ciphertext carries the AEAD tag in its final 16 bytes. The protected
// header is the deterministic encoding of an integer-keyed map: label 1 is
// the algorithm identifier, label 2 the content-encryption identifier
// (encrypted messages only), label 4 the key identifier. The unprotected map
// uses label 5 for the nonce and label -1 for the ephemeral public key.
package cose

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	envseal "github.com/envseal/envseal-go"
)

// Algorithm identifiers on the wire.
const (
	algES256K int64 = -47
	algEdDSA  int64 = -8
	algECDHES int64 = -25

	encA256GCM int64 = 3
	encC20P    int64 = 24
)

var encMode = mustEncMode()
var decMode = mustDecMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

type protectedHeader struct {
	Alg int64  `cbor:"1,keyasint"`
	Enc int64  `cbor:"2,keyasint,omitempty"`
	KID []byte `cbor:"4,keyasint,omitempty"`
}

type unprotectedHeader struct {
	Nonce        []byte `cbor:"5,keyasint,omitempty"`
	EphemeralKey []byte `cbor:"-1,keyasint,omitempty"`
}

type signedBody struct {
	_           struct{} `cbor:",toarray"`
	Protected   []byte
	Unprotected unprotectedHeader
	Payload     []byte
	Signature   []byte
}

type encryptedBody struct {
	_           struct{} `cbor:",toarray"`
	Protected   []byte
	Unprotected unprotectedHeader
	Ciphertext  []byte
}

// sigStructure is the deterministic structure signatures are computed over.
// It binds a context string and the protected header bytes to the payload.
type sigStructure struct {
	_         struct{} `cbor:",toarray"`
	Context   string
	Protected []byte
	External  []byte
	Payload   []byte
}

// encStructure is the AEAD associated data for encrypted messages.
type encStructure struct {
	_         struct{} `cbor:",toarray"`
	Context   string
	Protected []byte
	External  []byte
}

func algID(alg envseal.Algorithm) (int64, error) {
	switch alg {
	case envseal.ES256K:
		return algES256K, nil
	case envseal.EdDSA:
		return algEdDSA, nil
	case envseal.ECDHES:
		return algECDHES, nil
	default:
		return 0, fmt.Errorf("%w: %q", envseal.ErrUnsupportedAlgorithm, alg)
	}
}

func algFromID(id int64) (envseal.Algorithm, error) {
	switch id {
	case algES256K:
		return envseal.ES256K, nil
	case algEdDSA:
		return envseal.EdDSA, nil
	case algECDHES:
		return envseal.ECDHES, nil
	default:
		return "", fmt.Errorf("%w: algorithm id %d", envseal.ErrUnsupportedAlgorithm, id)
	}
}

func encID(enc envseal.ContentCipher) (int64, error) {
	switch enc {
	case envseal.A256GCM:
		return encA256GCM, nil
	case envseal.C20P:
		return encC20P, nil
	default:
		return 0, fmt.Errorf("%w: content cipher %q", envseal.ErrUnsupportedAlgorithm, enc)
	}
}

func encFromID(id int64) (envseal.ContentCipher, error) {
	switch id {
	case encA256GCM:
		return envseal.A256GCM, nil
	case encC20P:
		return envseal.C20P, nil
	default:
		return "", fmt.Errorf("%w: content cipher id %d", envseal.ErrUnsupportedAlgorithm, id)
	}
}

func sigInput(protected, payload []byte) ([]byte, error) {
	input, err := encMode.Marshal(sigStructure{
		Context:   "Signature1",
		Protected: protected,
		External:  []byte{},
		Payload:   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal signature structure: %w", err)
	}
	return input, nil
}

func encAAD(protected []byte) ([]byte, error) {
	aad, err := encMode.Marshal(encStructure{
		Context:   "Encrypt0",
		Protected: protected,
		External:  []byte{},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal associated data: %w", err)
	}
	return aad, nil
}
