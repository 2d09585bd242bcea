// Package didkey implements self-certifying key identifiers: the public key
// itself is encoded into the identifier, so resolution requires no lookup
// state. The format is "did:key:z" followed by the base58btc encoding of a
// multicodec prefix and the raw public key bytes.
//
// Multicodec prefixes (unsigned varint form):
//
//	0xed 0x01  Ed25519 public key
//	0xe7 0x01  secp256k1 public key (compressed)
//	0xec 0x01  X25519 public key
package didkey

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	envseal "github.com/envseal/envseal-go"
)

const prefix = "did:key:z"

var codecs = map[envseal.Algorithm][]byte{
	envseal.EdDSA:  {0xed, 0x01},
	envseal.ES256K: {0xe7, 0x01},
	envseal.ECDHES: {0xec, 0x01},
}

// Fingerprint encodes a public key into its did:key identifier.
func Fingerprint(pub envseal.PublicKey) (string, error) {
	codec, ok := codecs[pub.Alg]
	if !ok {
		return "", fmt.Errorf("%w: %q", envseal.ErrUnsupportedAlgorithm, pub.Alg)
	}
	if _, err := envseal.NewPublicKey(pub.Alg, pub.Bytes); err != nil {
		return "", err
	}

	data := make([]byte, 0, len(codec)+len(pub.Bytes))
	data = append(data, codec...)
	data = append(data, pub.Bytes...)
	return prefix + base58.Encode(data), nil
}

// Parse decodes a did:key identifier back into a tagged public key. A
// fragment suffix ("#...") naming the key within its document is accepted
// and ignored.
func Parse(id string) (envseal.PublicKey, error) {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		id = id[:i]
	}
	if !strings.HasPrefix(id, prefix) {
		return envseal.PublicKey{}, &envseal.MalformedEnvelopeError{
			Reason: fmt.Sprintf("key id must start with %q", prefix),
		}
	}

	data, err := base58.Decode(id[len(prefix):])
	if err != nil {
		return envseal.PublicKey{}, &envseal.MalformedEnvelopeError{Reason: "key id base58", Err: err}
	}

	for alg, codec := range codecs {
		if bytes.HasPrefix(data, codec) {
			return envseal.NewPublicKey(alg, data[len(codec):])
		}
	}
	return envseal.PublicKey{}, fmt.Errorf("%w: unknown multicodec prefix", envseal.ErrUnsupportedAlgorithm)
}

// Resolver resolves did:key identifiers. It is stateless and safe for
// concurrent use.
type Resolver struct{}

// Resolve implements envseal.KeyResolver.
func (Resolver) Resolve(_ context.Context, keyID string) (envseal.PublicKey, error) {
	pub, err := Parse(keyID)
	if err != nil {
		return envseal.PublicKey{}, fmt.Errorf("%w: %v", envseal.ErrKeyNotFound, err)
	}
	return pub, nil
}
