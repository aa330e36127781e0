//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/tzekovic/OX-Project/internal/events"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(connString)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisGameRepository(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	repo := NewGameRepository(rdb, time.Minute)

	t.Run("round trip", func(t *testing.T) {
		snap := sampleSnapshot(t, "room-1")
		require.NoError(t, repo.Save(ctx, snap))

		got, err := repo.FindByID(ctx, "room-1")
		require.NoError(t, err)
		assert.Equal(t, snap.State, got.State)
		assert.Equal(t, "pvai", got.Mode)
		assert.Equal(t, "hard", got.Difficulty)
		assert.True(t, snap.UpdatedAt.Equal(got.UpdatedAt))

		ttl, err := rdb.TTL(ctx, "room:room-1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("save overwrites", func(t *testing.T) {
		snap := sampleSnapshot(t, "room-2")
		require.NoError(t, repo.Save(ctx, snap))
		snap.Mode = "pvp"
		require.NoError(t, repo.Save(ctx, snap))

		got, err := repo.FindByID(ctx, "room-2")
		require.NoError(t, err)
		assert.Equal(t, "pvp", got.Mode)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt state is rejected", func(t *testing.T) {
		require.NoError(t, rdb.HSet(ctx, "room:bad", "state", `{"board":["X","","","","","","","",""],"x_moves":[],"o_moves":[],"current_player":"O","active":true}`, "updated_at", time.Now().Format(time.RFC3339Nano)).Err())
		_, err := repo.FindByID(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, sampleSnapshot(t, "room-3")))
		require.NoError(t, repo.Delete(ctx, "room-3"))
		_, err := repo.FindByID(ctx, "room-3")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRedisEventPublisher(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	publisher := NewEventPublisher(rdb)

	channel := events.RoomChannel("room-1")
	pubsub := rdb.Subscribe(ctx, channel)
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	data, err := events.Encode(events.TypeGameReset, events.GameResetPayload{RoomID: "room-1"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, channel, data))

	select {
	case msg := <-pubsub.Channel():
		assert.JSONEq(t, string(data), msg.Payload)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}
