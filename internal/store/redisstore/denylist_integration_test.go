//go:build integration

package redisstore

import (
	"context"
	"testing"
	"time"

	"bookapi/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *Denylist {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := Connect(ctx, url)
	require.NoError(t, err)

	d := New(client)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return d
}

func TestDenylistRoundTrip(t *testing.T) {
	d := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "token-a", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, d.Add(ctx, "token-a", time.Now().Add(time.Hour)), store.ErrDuplicate)

	ok, err := d.Contains(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Contains(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := d.client.TTL(ctx, d.key("token-a")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	n, err := d.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDenylistPastExpiryStillStoredBriefly(t *testing.T) {
	d := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "stale", time.Now().Add(-time.Minute)))
	ok, err := d.Contains(ctx, "stale")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := d.Contains(ctx, "stale")
		return err == nil && !ok
	}, 5*time.Second, 200*time.Millisecond)
}
