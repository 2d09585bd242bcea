package envseal

import (
	"context"
	"fmt"
)

// KeyResolver maps a key identifier to a public key. Resolution is supplied
// by the caller; this package never resolves identifiers on its own.
type KeyResolver interface {
	// Resolve returns the public key for keyID, or an error wrapping
	// ErrKeyNotFound when no key exists.
	Resolve(ctx context.Context, keyID string) (PublicKey, error)
}

// KeyResolverFunc adapts a function to the KeyResolver interface.
type KeyResolverFunc func(ctx context.Context, keyID string) (PublicKey, error)

// Resolve implements KeyResolver.
func (f KeyResolverFunc) Resolve(ctx context.Context, keyID string) (PublicKey, error) {
	return f(ctx, keyID)
}

// StaticResolver resolves key IDs from a fixed in-memory map. The map is
// treated as read-only after construction, so a StaticResolver is safe for
// concurrent use.
type StaticResolver struct {
	keys map[string]PublicKey
}

// NewStaticResolver copies the supplied map into a resolver.
func NewStaticResolver(keys map[string]PublicKey) *StaticResolver {
	copied := make(map[string]PublicKey, len(keys))
	for id, pub := range keys {
		copied[id] = pub
	}
	return &StaticResolver{keys: copied}
}

// Resolve implements KeyResolver.
func (r *StaticResolver) Resolve(_ context.Context, keyID string) (PublicKey, error) {
	pub, ok := r.keys[keyID]
	if !ok {
		return PublicKey{}, fmt.Errorf("%w: %q", ErrKeyNotFound, keyID)
	}
	return pub, nil
}
