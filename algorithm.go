package envseal

import "fmt"

// Algorithm identifies a key algorithm. The set is closed: ES256K and EdDSA
// are signature schemes, ECDHES is the key-agreement scheme used for content
// encryption.
type Algorithm string

const (
	// ES256K is ECDSA over secp256k1 with SHA-256.
	ES256K Algorithm = "ES256K"
	// EdDSA is Ed25519.
	EdDSA Algorithm = "EdDSA"
	// ECDHES is ephemeral-static X25519 key agreement.
	ECDHES Algorithm = "ECDH-ES"
)

// ContentCipher identifies the AEAD cipher used for envelope content
// encryption. All supported ciphers use 32-byte keys, 12-byte nonces, and
// 16-byte tags.
type ContentCipher string

const (
	// A256GCM is AES-256-GCM.
	A256GCM ContentCipher = "A256GCM"
	// C20P is ChaCha20-Poly1305 with the IETF 96-bit nonce.
	C20P ContentCipher = "C20P"
)

const (
	// ContentKeySize is the size of a derived content-encryption key in bytes.
	ContentKeySize = 32
	// NonceSize is the size of an AEAD nonce in bytes.
	NonceSize = 12
	// TagSize is the size of an AEAD authentication tag in bytes.
	TagSize = 16
)

// AlgorithmInfo describes one entry in the algorithm registry: fixed key and
// signature sizes plus the concrete operations for the algorithm. The
// registry is built once as a package-level table and never mutated, so it is
// safe for unsynchronized concurrent reads.
type AlgorithmInfo struct {
	// Name is the algorithm identifier.
	Name Algorithm
	// PublicKeySize is the exact public key length in bytes.
	PublicKeySize int
	// PrivateKeySize is the exact private key length in bytes.
	PrivateKeySize int
	// SignatureSize is the exact signature length in bytes. Zero for
	// non-signature algorithms.
	SignatureSize int

	sign         func(priv, payload []byte) ([]byte, error)
	verify       func(pub, payload, sig []byte) error
	generate     func() (pub, priv []byte, err error)
	derivePublic func(priv []byte) ([]byte, error)
}

// registry is the closed algorithm table. Adding an algorithm means adding a
// row here and implementations in sign.go or ecdh.go; there is no runtime
// registration.
var registry = map[Algorithm]AlgorithmInfo{
	ES256K: {
		Name:           ES256K,
		PublicKeySize:  33, // compressed SEC1
		PrivateKeySize: 32,
		SignatureSize:  64, // compact R||S
		sign:           signES256K,
		verify:         verifyES256K,
		generate:       generateES256K,
		derivePublic:   derivePublicES256K,
	},
	EdDSA: {
		Name:           EdDSA,
		PublicKeySize:  32,
		PrivateKeySize: 32, // seed form
		SignatureSize:  64,
		sign:           signEdDSA,
		verify:         verifyEdDSA,
		generate:       generateEdDSA,
		derivePublic:   derivePublicEdDSA,
	},
	ECDHES: {
		Name:           ECDHES,
		PublicKeySize:  32,
		PrivateKeySize: 32,
		generate:       generateX25519,
		derivePublic:   derivePublicX25519,
	},
}

// ResolveAlgorithm looks up the registry entry for an algorithm identifier.
// Unknown identifiers fail with ErrUnsupportedAlgorithm; this is the single
// gate that prevents silent fallback to a different scheme.
func ResolveAlgorithm(alg Algorithm) (AlgorithmInfo, error) {
	info, ok := registry[alg]
	if !ok {
		return AlgorithmInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	return info, nil
}

// ResolveCipher validates a content-cipher identifier. Unknown identifiers
// fail with ErrUnsupportedAlgorithm.
func ResolveCipher(enc ContentCipher) (ContentCipher, error) {
	switch enc {
	case A256GCM, C20P:
		return enc, nil
	default:
		return "", fmt.Errorf("%w: content cipher %q", ErrUnsupportedAlgorithm, enc)
	}
}
