package storage_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/qcm-suite/qcm/internal/platform/storage"
)

func exerciseStore(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "token", "abc"))
	v, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)

	require.NoError(t, store.Delete(ctx, "token"))
	_, ok, err = store.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, storage.NewMemory())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := storage.NewRedis(client, "")
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "filters:suppliers", `{"search":"x"}`))
	raw, err := mr.Get("qcm:local:filters:suppliers")
	require.NoError(t, err)
	require.Equal(t, `{"search":"x"}`, raw)
}
