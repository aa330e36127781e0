package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/game"
	"github.com/tzekovic/OX-Project/internal/player"
	"github.com/tzekovic/OX-Project/internal/repository"
	"github.com/tzekovic/OX-Project/internal/repository/mock"
	"github.com/tzekovic/OX-Project/internal/room"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type nopConn struct{}

func (nopConn) WriteMessage(int, []byte) error { return nil }
func (nopConn) Close() error                   { return nil }

func newTestHub(repo repository.GameRepository, c *clock) *Hub {
	return NewHub(repo, repository.NopPublisher{},
		WithIdleTTL(time.Minute),
		WithClock(c.Now),
		WithRoomOptions(room.WithSelector(bot.NewSeededSelector(1))),
	)
}

func TestHub_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryGameRepository(0)
	h := newTestHub(repo, &clock{now: time.Now()})

	r, err := h.CreateRoom(ctx, room.PvAI, bot.Hard)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, h.Len())

	got, err := h.Room(ctx, r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)

	snap, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "pvai", snap.Mode)
	assert.Equal(t, "hard", snap.Difficulty)

	_, err = h.Room(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHub_RestoresFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryGameRepository(0)
	c := &clock{now: time.Now()}

	first := newTestHub(repo, c)
	r, err := first.CreateRoom(ctx, room.PvP, bot.Easy)
	require.NoError(t, err)
	_, err = r.Move(ctx, 4)
	require.NoError(t, err)

	second := newTestHub(repo, c)
	restored, err := second.Room(ctx, r.ID)
	require.NoError(t, err)
	assert.NotSame(t, r, restored)
	assert.Equal(t, r.GameState(), restored.GameState())
	assert.Equal(t, game.PlayerO, restored.GameState().CurrentPlayer)
}

func TestHub_ReapIdle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryGameRepository(0)
	c := &clock{now: time.Now()}
	h := newTestHub(repo, c)

	idle, err := h.CreateRoom(ctx, room.PvP, bot.Easy)
	require.NoError(t, err)
	watched, err := h.CreateRoom(ctx, room.PvP, bot.Easy)
	require.NoError(t, err)
	require.NoError(t, watched.Subscribe(player.NewPlayer("p1", nopConn{})))

	assert.Equal(t, 0, h.reapIdle(ctx))

	c.Advance(2 * time.Minute)
	assert.Equal(t, 1, h.reapIdle(ctx))
	assert.Equal(t, 1, h.Len())

	// Evicted rooms come back from the repository.
	back, err := h.Room(ctx, idle.ID)
	require.NoError(t, err)
	assert.NotSame(t, idle, back)
	assert.Equal(t, 2, h.Len())
}

func TestHub_ReapIdleDropsExpiredSnapshots(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Now()}
	repo := repository.NewMemoryGameRepository(time.Minute, repository.WithMemoryClock(c.Now))
	h := newTestHub(repo, c)

	ids := make([]string, 0, 100)
	for range 100 {
		r, err := h.CreateRoom(ctx, room.PvP, bot.Easy)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	require.Equal(t, 100, repo.Len())

	c.Advance(24 * time.Hour)
	assert.Equal(t, 100, h.reapIdle(ctx))
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, repo.Len())

	for _, id := range ids[:3] {
		_, err := repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = h.Room(ctx, id)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	}
}

func TestHub_RemoveRoom(t *testing.T) {
	ctx := context.Background()
	h := newTestHub(repository.NewMemoryGameRepository(0), &clock{now: time.Now()})

	r, err := h.CreateRoom(ctx, room.PvP, bot.Easy)
	require.NoError(t, err)
	require.NoError(t, h.RemoveRoom(ctx, r.ID))

	_, err = h.Room(ctx, r.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = r.Move(ctx, 0)
	assert.ErrorIs(t, err, room.ErrClosed)

	assert.ErrorIs(t, h.RemoveRoom(ctx, r.ID), ErrRoomNotFound)
}

func TestHub_RemoveStoredRoom(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryGameRepository(0)
	c := &clock{now: time.Now()}

	r, err := newTestHub(repo, c).CreateRoom(ctx, room.PvP, bot.Easy)
	require.NoError(t, err)

	other := newTestHub(repo, c)
	require.NoError(t, other.RemoveRoom(ctx, r.ID))
	_, err = repo.FindByID(ctx, r.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHub_CreateRoomStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockGameRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	h := NewHub(repo, repository.NopPublisher{})
	_, err := h.CreateRoom(context.Background(), room.PvP, bot.Easy)
	assert.Error(t, err)
	assert.Equal(t, 0, h.Len())
}

func TestHub_RoomLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockGameRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), "r1").Return(nil, errors.New("redis down"))

	h := NewHub(repo, repository.NopPublisher{})
	_, err := h.Room(context.Background(), "r1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRoomNotFound)
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(repository.NewMemoryGameRepository(0), repository.NopPublisher{}, WithReapInterval(5*time.Millisecond))

	r, err := h.CreateRoom(ctx, room.PvP, bot.Easy)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, h.Len())
	assert.ErrorIs(t, r.Restart(context.Background()), room.ErrClosed)
}
