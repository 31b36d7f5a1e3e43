package repository

import (
	"context"
	"ctchen222/Hex/internal/player"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisGameRepository(t *testing.T) {
	rdb := newRedis(t)
	repo := NewGameRepository(rdb)
	ctx := context.Background()
	started := time.Date(2023, 12, 8, 12, 0, 0, 0, time.UTC)

	snap := &GameSnapshot{
		ID:        "g1",
		SGF:       "(;FF[4]GM[11]SZ[4];B[a1])",
		State:     "playing",
		PlayerIDs: [2]string{"alice", "bob"},
		StartedAt: started,
		UpdatedAt: started.Add(time.Second),
	}
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, active)

	snap.State = "ended"
	require.NoError(t, repo.Save(ctx, snap))
	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	ttl, err := rdb.TTL(ctx, gameKey("g1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Delete(ctx, "g1"))
	_, err = repo.FindByID(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisGameRepositoryPublish(t *testing.T) {
	rdb := newRedis(t)
	repo := NewGameRepository(rdb)
	ctx := context.Background()

	payloads, stop, err := repo.Subscribe(ctx, "g1")
	require.NoError(t, err)
	defer stop()

	require.NoError(t, repo.Publish(ctx, "g1", []byte(`{"event":"played"}`)))

	select {
	case payload := <-payloads:
		assert.Equal(t, `{"event":"played"}`, string(payload))
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}

	require.NoError(t, stop())
	_, open := <-payloads
	assert.False(t, open, "payloads must be closed once the subscription stops")
}

func TestRedisPlayerRepository(t *testing.T) {
	rdb := newRedis(t)
	repo := NewPlayerRepository(rdb)
	ctx := context.Background()

	_, err := repo.FindPresence(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetPresence(ctx, "alice", Presence{GameID: "g1", Seat: 1, Status: player.StatusConnected}))
	require.NoError(t, repo.UpdateConnectionStatus(ctx, "alice", player.StatusDisconnected))

	got, err := repo.FindPresence(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &Presence{GameID: "g1", Seat: 1, Status: player.StatusDisconnected}, got)
}
