package apiclient

import (
	"context"

	"github.com/qcm-suite/qcm/internal/platform/storage"
)

// DefaultTokenKey is the storage key the bearer token lives under.
const DefaultTokenKey = "token"

// TokenStore reads and clears the bearer token kept in local storage.
type TokenStore struct {
	kv  storage.Store
	key string
}

// NewTokenStore binds the token to key inside kv.
func NewTokenStore(kv storage.Store, key string) *TokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &TokenStore{kv: kv, key: key}
}

// Token returns the stored token, or "" when none is present.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	if t == nil || t.kv == nil {
		return "", nil
	}
	v, ok, err := t.kv.Get(ctx, t.key)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// Set stores token. An empty token clears it.
func (t *TokenStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return t.Clear(ctx)
	}
	return t.kv.Set(ctx, t.key, token)
}

// Clear removes the stored token.
func (t *TokenStore) Clear(ctx context.Context) error {
	if t == nil || t.kv == nil {
		return nil
	}
	return t.kv.Delete(ctx, t.key)
}
