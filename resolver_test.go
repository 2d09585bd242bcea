package envseal

import (
	"context"
	"errors"
	"testing"
)

func TestStaticResolver(t *testing.T) {
	pub, _, err := GenerateKey(EdDSA)
	if err != nil {
		t.Fatal(err)
	}
	resolver := NewStaticResolver(map[string]PublicKey{"key-1": pub})

	got, err := resolver.Resolve(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Alg != EdDSA {
		t.Errorf("resolved algorithm = %s, want EdDSA", got.Alg)
	}

	if _, err := resolver.Resolve(context.Background(), "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrKeyNotFound", err)
	}
}

func TestStaticResolver_CopiesMap(t *testing.T) {
	pub, _, err := GenerateKey(EdDSA)
	if err != nil {
		t.Fatal(err)
	}
	keys := map[string]PublicKey{"key-1": pub}
	resolver := NewStaticResolver(keys)
	delete(keys, "key-1")

	if _, err := resolver.Resolve(context.Background(), "key-1"); err != nil {
		t.Errorf("Resolve() error = %v after caller mutated source map", err)
	}
}

func TestKeyResolverFunc(t *testing.T) {
	pub, _, err := GenerateKey(ES256K)
	if err != nil {
		t.Fatal(err)
	}
	resolver := KeyResolverFunc(func(_ context.Context, keyID string) (PublicKey, error) {
		if keyID != "key-2" {
			return PublicKey{}, ErrKeyNotFound
		}
		return pub, nil
	})

	if _, err := resolver.Resolve(context.Background(), "key-2"); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "nope"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Resolve() error = %v, want ErrKeyNotFound", err)
	}
}
