// Package envseal signs, verifies, encrypts, and decrypts arbitrary byte
// payloads and serializes the result into compact envelope formats.
//
// The package supports a small, closed set of interoperable algorithms:
//
//   - ES256K: ECDSA over secp256k1 with SHA-256, deterministic per RFC 6979.
//     Signatures are 64-byte compact R||S with low-S enforcement.
//
//   - EdDSA: Ed25519 signatures (RFC 8032). Deterministic by construction.
//
//   - ECDH-ES: ephemeral-static X25519 key agreement for content encryption.
//     The content-encryption key is derived with HKDF-SHA-256 bound to the
//     envelope's canonical header bytes.
//
//   - A256GCM and C20P: AEAD content ciphers (AES-256-GCM and
//     ChaCha20-Poly1305). Both use 256-bit keys, 96-bit nonces, and 128-bit
//     tags.
//
// Envelope serialization lives in subpackages: jws and jwe implement the
// compact text formats (base64url segments joined by '.'), and cose
// implements the compact binary format (deterministic integer-keyed CBOR).
//
// # Security Model
//
//   - Confidentiality: only the holder of the recipient private key can
//     decrypt an encryption envelope.
//   - Authenticity and integrity: signatures are verified against an
//     explicitly supplied public key; tampering with any envelope field
//     causes verification or decryption to fail.
//   - Forward secrecy: every encryption uses a fresh ephemeral key pair.
//   - Context binding: the content-encryption key derivation is salted with
//     the canonical header bytes, so a ciphertext replayed under a different
//     header fails to decrypt.
//
// # Critical Security Notes
//
// AEAD nonces MUST be unique for each encryption under the same key. The
// package generates a fresh random nonce per call, but nonce uniqueness
// across calls that reuse a derived key is a caller responsibility the
// package cannot detect. Nonce reuse completely breaks the security of both
// content ciphers, allowing attackers to recover the authentication key and
// forge messages.
//
// Verification and decryption failures are deliberately coarse-grained: a
// bad length, malformed encoding, and a genuine mismatch all surface as the
// same error, so callers cannot be used as a padding or format oracle.
//
// Signature verification never recovers a public key from the signature,
// even for secp256k1 where the curve permits it. The verifying key is always
// supplied explicitly, either directly or through a KeyResolver.
//
// # Basic usage
//
//	pub, priv, err := envseal.GenerateKey(envseal.EdDSA)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	signer, err := envseal.NewLocalSigner(priv, "key-1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := jws.Encode(ctx, []byte(`{"sub":"alice"}`), signer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	env, err := jws.Decode(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := env.Verify(pub); err != nil {
//	    log.Fatal(err)
//	}
package envseal
