package repository

//go:generate mockgen -destination=mock/repository_mock.go -package=mock github.com/tzekovic/OX-Project/internal/repository GameRepository,EventPublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/game"
)

var tracer = otel.Tracer("repository")

// ErrNotFound is returned when no snapshot exists for a room.
var ErrNotFound = errors.New("game not found")

// RoomSnapshot is the stored form of a room: the live state only. Each
// save overwrites the previous snapshot.
type RoomSnapshot struct {
	RoomID     string
	Mode       string
	Difficulty string
	State      game.GameState
	UpdatedAt  time.Time
}

// GameRepository defines the interface for game data operations.
type GameRepository interface {
	Save(ctx context.Context, snap *RoomSnapshot) error
	FindByID(ctx context.Context, id string) (*RoomSnapshot, error)
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that must drop expired snapshots
// themselves. Redis expires keys on its own.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

type redisGameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGameRepository creates a new Redis-based GameRepository. Keys expire
// after ttl without a save.
func NewGameRepository(rdb *redis.Client, ttl time.Duration) GameRepository {
	return &redisGameRepository{rdb: rdb, ttl: ttl}
}

func roomKey(id string) string {
	return fmt.Sprintf("room:%s", id)
}

// Save writes the snapshot and refreshes the key's expiry.
func (r *redisGameRepository) Save(ctx context.Context, snap *RoomSnapshot) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Save", trace.WithAttributes(
		attribute.String("room.id", snap.RoomID),
	))
	defer span.End()

	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	key := roomKey(snap.RoomID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		game.FieldState, stateJSON,
		game.FieldMode, snap.Mode,
		game.FieldDifficulty, snap.Difficulty,
		game.FieldUpdatedAt, snap.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save game in redis: %w", err)
	}
	return nil
}

// FindByID retrieves the current game state from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*RoomSnapshot, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.String("room.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	var state game.GameState
	if err := json.Unmarshal([]byte(data[game.FieldState]), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("stored game state is corrupt: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, data[game.FieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &RoomSnapshot{
		RoomID:     id,
		Mode:       data[game.FieldMode],
		Difficulty: data[game.FieldDifficulty],
		State:      state,
		UpdatedAt:  updatedAt,
	}, nil
}

// Delete removes a room's snapshot.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(
		attribute.String("room.id", id),
	))
	defer span.End()

	return r.rdb.Del(ctx, roomKey(id)).Err()
}
