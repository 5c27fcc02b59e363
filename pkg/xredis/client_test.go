package xredis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	return NewClientFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestClient_SetGet(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	ok, err := c.Exist(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Del(ctx, "k"))
	ok, err = c.Exist(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClient_Lease(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "lease", "owner-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SetNX(ctx, "lease", "owner-2", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	released, err := c.DelIfEqual(ctx, "lease", "owner-2")
	require.NoError(t, err)
	require.False(t, released)

	released, err = c.DelIfEqual(ctx, "lease", "owner-1")
	require.NoError(t, err)
	require.True(t, released)

	ok, err = c.SetNX(ctx, "lease", "owner-2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.SetNX(ctx, "lease", "owner-3", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}
