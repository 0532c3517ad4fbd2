package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresenceFixture(t *testing.T) (*PresenceService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPresenceService(rdb, time.Minute, zerolog.Nop()), mr
}

func TestPresenceLifecycle(t *testing.T) {
	svc, _ := newPresenceFixture(t)
	ctx := context.Background()

	online, err := svc.IsOnline(ctx, "u_anna")
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, svc.MarkOnline(ctx, "u_anna"))
	online, err = svc.IsOnline(ctx, "u_anna")
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, svc.MarkOffline(ctx, "u_anna"))
	online, err = svc.IsOnline(ctx, "u_anna")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestPresenceExpiresWithoutHeartbeat(t *testing.T) {
	svc, mr := newPresenceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkOnline(ctx, "u_anna"))
	mr.FastForward(2 * time.Minute)

	online, err := svc.IsOnline(ctx, "u_anna")
	require.NoError(t, err)
	assert.False(t, online, "a crashed connection must age out with its TTL")
}

func TestPresenceHeartbeatExtendsTTL(t *testing.T) {
	svc, mr := newPresenceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkOnline(ctx, "u_anna"))
	mr.FastForward(45 * time.Second)
	require.NoError(t, svc.MarkOnline(ctx, "u_anna")) // heartbeat
	mr.FastForward(45 * time.Second)

	online, err := svc.IsOnline(ctx, "u_anna")
	require.NoError(t, err)
	assert.True(t, online)
}
