package envseal

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestSharedSecret_Symmetry(t *testing.T) {
	alicePub, alicePriv, err := GenerateKey(ECDHES)
	if err != nil {
		t.Fatal(err)
	}
	bobPub, bobPriv, err := GenerateKey(ECDHES)
	if err != nil {
		t.Fatal(err)
	}

	ab, err := SharedSecret(alicePriv, bobPub)
	if err != nil {
		t.Fatalf("SharedSecret() error = %v", err)
	}
	ba, err := SharedSecret(bobPriv, alicePub)
	if err != nil {
		t.Fatalf("SharedSecret() error = %v", err)
	}
	if !bytes.Equal(ab, ba) {
		t.Error("shared secrets disagree")
	}
}

func TestSharedSecret_KeyMismatch(t *testing.T) {
	_, signPriv, err := GenerateKey(EdDSA)
	if err != nil {
		t.Fatal(err)
	}
	agreePub, agreePriv, err := GenerateKey(ECDHES)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := SharedSecret(signPriv, agreePub); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("SharedSecret() with EdDSA private error = %v, want ErrKeyMismatch", err)
	}

	signPub, _, err := GenerateKey(EdDSA)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SharedSecret(agreePriv, signPub); !errors.Is(err, ErrKeyMismatch) {
		t.Errorf("SharedSecret() with EdDSA public error = %v, want ErrKeyMismatch", err)
	}
}

func TestDeriveContentKey_HeaderBinding(t *testing.T) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatal(err)
	}

	key1, err := DeriveContentKey(secret, []byte(`{"alg":"ECDH-ES"}`), A256GCM)
	if err != nil {
		t.Fatal(err)
	}
	key2, err := DeriveContentKey(secret, []byte(`{"alg":"ECDH-ES"}`), A256GCM)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key1, key2) {
		t.Error("derivation is not deterministic")
	}

	// A different header or cipher must derive a different key.
	key3, err := DeriveContentKey(secret, []byte(`{"alg":"ECDH-ES","kid":"x"}`), A256GCM)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(key1, key3) {
		t.Error("key is not bound to header bytes")
	}
	key4, err := DeriveContentKey(secret, []byte(`{"alg":"ECDH-ES"}`), C20P)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(key1, key4) {
		t.Error("key is not bound to content cipher")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	plaintexts := [][]byte{
		{},
		[]byte("secret"),
		bytes.Repeat([]byte{0x42}, 10000),
	}

	for _, enc := range []ContentCipher{A256GCM, C20P} {
		t.Run(string(enc), func(t *testing.T) {
			key := make([]byte, ContentKeySize)
			if _, err := rand.Read(key); err != nil {
				t.Fatal(err)
			}
			aad := []byte("header-bytes")

			for _, plaintext := range plaintexts {
				nonce, ciphertext, tag, err := Seal(enc, key, plaintext, aad)
				if err != nil {
					t.Fatalf("Seal() error = %v", err)
				}
				if len(nonce) != NonceSize {
					t.Errorf("nonce length = %d, want %d", len(nonce), NonceSize)
				}
				if len(tag) != TagSize {
					t.Errorf("tag length = %d, want %d", len(tag), TagSize)
				}
				if len(ciphertext) != len(plaintext) {
					t.Errorf("ciphertext length = %d, want %d", len(ciphertext), len(plaintext))
				}

				got, err := Open(enc, key, nonce, ciphertext, tag, aad)
				if err != nil {
					t.Fatalf("Open() error = %v", err)
				}
				if !bytes.Equal(got, plaintext) {
					t.Error("round trip mismatch")
				}
			}
		})
	}
}

func TestOpen_Failures(t *testing.T) {
	key := make([]byte, ContentKeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	aad := []byte("ctx")
	nonce, ciphertext, tag, err := Seal(A256GCM, key, []byte("secret"), aad)
	if err != nil {
		t.Fatal(err)
	}

	flip := func(b []byte, i int) []byte {
		out := append([]byte(nil), b...)
		out[i%len(out)] ^= 0x01
		return out
	}

	tests := []struct {
		name string
		fn   func() ([]byte, error)
	}{
		{"tag flipped", func() ([]byte, error) {
			return Open(A256GCM, key, nonce, ciphertext, flip(tag, 0), aad)
		}},
		{"ciphertext flipped", func() ([]byte, error) {
			return Open(A256GCM, key, nonce, flip(ciphertext, 3), tag, aad)
		}},
		{"nonce flipped", func() ([]byte, error) {
			return Open(A256GCM, key, flip(nonce, 0), ciphertext, tag, aad)
		}},
		{"aad changed", func() ([]byte, error) {
			return Open(A256GCM, key, nonce, ciphertext, tag, []byte("other"))
		}},
		{"wrong cipher", func() ([]byte, error) {
			return Open(C20P, key, nonce, ciphertext, tag, aad)
		}},
		{"short nonce", func() ([]byte, error) {
			return Open(A256GCM, key, nonce[:8], ciphertext, tag, aad)
		}},
		{"short tag", func() ([]byte, error) {
			return Open(A256GCM, key, nonce, ciphertext, tag[:8], aad)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, ErrDecryptionFailed) {
				t.Errorf("Open() error = %v, want ErrDecryptionFailed", err)
			}
		})
	}
}

func TestSeal_NonceUniqueness(t *testing.T) {
	key := make([]byte, ContentKeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	const trials = 10000
	seen := make(map[[NonceSize]byte]struct{}, trials)
	for i := 0; i < trials; i++ {
		nonce, _, _, err := Seal(A256GCM, key, []byte("same payload"), nil)
		if err != nil {
			t.Fatal(err)
		}
		var k [NonceSize]byte
		copy(k[:], nonce)
		if _, dup := seen[k]; dup {
			t.Fatalf("nonce repeated after %d trials", i)
		}
		seen[k] = struct{}{}
	}
}

func TestEphemeralKeys_Distinct(t *testing.T) {
	pub1, _, err := GenerateEphemeralKey()
	if err != nil {
		t.Fatal(err)
	}
	pub2, _, err := GenerateEphemeralKey()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(pub1.Bytes, pub2.Bytes) {
		t.Error("ephemeral keys repeated")
	}
}
