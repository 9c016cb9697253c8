package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthreg/internal/platform/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("empty url means not configured", func(t *testing.T) {
		client, err := New(ctx, config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("connects and reports health", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := New(ctx, config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 2, DialTimeout: time.Second})
		require.NoError(t, err)
		defer client.Close()
		assert.NoError(t, client.Health(ctx))
	})

	t.Run("bad url rejected", func(t *testing.T) {
		_, err := New(ctx, config.RedisConfig{URL: "not a url"})
		require.Error(t, err)
	})

	t.Run("unreachable server rejected", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, err := New(ctx, config.RedisConfig{URL: "redis://" + addr, DialTimeout: 200 * time.Millisecond})
		require.Error(t, err)
	})
}
