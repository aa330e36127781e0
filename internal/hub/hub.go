package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/repository"
	"github.com/tzekovic/OX-Project/internal/room"
)

var tracer = otel.Tracer("hub")

// ErrRoomNotFound is returned for IDs that are neither live nor stored.
var ErrRoomNotFound = errors.New("room not found")

const (
	defaultIdleTTL      = 30 * time.Minute
	defaultReapInterval = time.Minute
)

// Hub manages all the rooms.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room

	gameRepo     repository.GameRepository
	publisher    repository.EventPublisher
	roomOpts     []room.Option
	idleTTL      time.Duration
	reapInterval time.Duration
	now          func() time.Time
}

// Option configures a Hub.
type Option func(*Hub)

// WithRoomOptions applies opts to every room the hub creates or restores.
func WithRoomOptions(opts ...room.Option) Option {
	return func(h *Hub) { h.roomOpts = append(h.roomOpts, opts...) }
}

// WithIdleTTL sets how long a room without listeners stays in memory.
func WithIdleTTL(d time.Duration) Option { return func(h *Hub) { h.idleTTL = d } }

// WithReapInterval sets how often idle rooms are looked for.
func WithReapInterval(d time.Duration) Option { return func(h *Hub) { h.reapInterval = d } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(h *Hub) { h.now = now } }

// NewHub creates a new hub.
func NewHub(gameRepo repository.GameRepository, publisher repository.EventPublisher, opts ...Option) *Hub {
	h := &Hub{
		rooms:        make(map[string]*room.Room),
		gameRepo:     gameRepo,
		publisher:    publisher,
		idleTTL:      defaultIdleTTL,
		reapInterval: defaultReapInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) roomOptions(extra ...room.Option) []room.Option {
	opts := []room.Option{
		room.WithRepository(h.gameRepo),
		room.WithPublisher(h.publisher),
		room.WithClock(h.now),
	}
	opts = append(opts, h.roomOpts...)
	return append(opts, extra...)
}

// CreateRoom opens a room with a fresh game and stores its first snapshot.
func (h *Hub) CreateRoom(ctx context.Context, mode room.Mode, difficulty bot.Difficulty) (*room.Room, error) {
	id := uuid.NewString()
	ctx, span := tracer.Start(ctx, "hub.CreateRoom", trace.WithAttributes(
		attribute.String("room.id", id),
		attribute.String("room.mode", string(mode)),
	))
	defer span.End()

	r := room.NewRoom(id, h.roomOptions(room.WithMode(mode), room.WithDifficulty(difficulty))...)
	if err := h.gameRepo.Save(ctx, r.Snapshot()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store room")
		return nil, fmt.Errorf("failed to store room %s: %w", id, err)
	}

	h.mu.Lock()
	h.rooms[id] = r
	h.mu.Unlock()

	slog.InfoContext(ctx, "Room created", "room.id", id, "room.mode", mode, "room.difficulty", difficulty)
	return r, nil
}

// Room returns the live room with the given ID, restoring it from the
// repository if it is not in memory.
func (h *Hub) Room(ctx context.Context, id string) (*room.Room, error) {
	h.mu.RLock()
	r, ok := h.rooms[id]
	h.mu.RUnlock()
	if ok {
		return r, nil
	}

	ctx, span := tracer.Start(ctx, "hub.RestoreRoom", trace.WithAttributes(attribute.String("room.id", id)))
	defer span.End()

	snap, err := h.gameRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load room")
		return nil, fmt.Errorf("failed to load room %s: %w", id, err)
	}

	restored, err := room.Restore(snap, h.roomOptions()...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to restore room")
		return nil, err
	}

	h.mu.Lock()
	if existing, ok := h.rooms[id]; ok {
		h.mu.Unlock()
		return existing, nil
	}
	h.rooms[id] = restored
	h.mu.Unlock()

	slog.InfoContext(ctx, "Room restored", "room.id", id)
	restored.Resume(ctx)
	return restored, nil
}

// RemoveRoom closes a room and deletes its stored snapshot. It returns
// ErrRoomNotFound when the room is neither live nor stored.
func (h *Hub) RemoveRoom(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "hub.RemoveRoom", trace.WithAttributes(attribute.String("room.id", id)))
	defer span.End()

	h.mu.Lock()
	r, ok := h.rooms[id]
	delete(h.rooms, id)
	h.mu.Unlock()

	if ok {
		r.Close()
	} else if _, err := h.gameRepo.FindByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return ErrRoomNotFound
	}

	if err := h.gameRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete room")
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Room removed", "room.id", id)
	return nil
}

// Len returns the number of rooms held in memory.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
