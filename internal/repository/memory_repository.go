package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	snap    RoomSnapshot
	expires time.Time
}

// MemoryGameRepository is a GameRepository kept in process memory, used
// when no Redis server is configured. Like the Redis store, every Save
// pushes the snapshot's expiry ttl into the future.
type MemoryGameRepository struct {
	mu    sync.RWMutex
	rooms map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

var _ Sweeper = (*MemoryGameRepository)(nil)

// MemoryOption configures a MemoryGameRepository.
type MemoryOption func(*MemoryGameRepository)

// WithMemoryClock overrides time.Now.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(r *MemoryGameRepository) { r.now = now }
}

// NewMemoryGameRepository creates an in-memory store whose snapshots expire
// ttl after their last save. A ttl of zero keeps them forever.
func NewMemoryGameRepository(ttl time.Duration, opts ...MemoryOption) *MemoryGameRepository {
	r := &MemoryGameRepository{
		rooms: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryGameRepository) Save(_ context.Context, snap *RoomSnapshot) error {
	stored := *snap
	stored.State = snap.State.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := memoryEntry{snap: stored}
	if r.ttl > 0 {
		entry.expires = r.now().Add(r.ttl)
	}
	r.rooms[snap.RoomID] = entry
	return nil
}

func (r *MemoryGameRepository) FindByID(_ context.Context, id string) (*RoomSnapshot, error) {
	r.mu.RLock()
	entry, ok := r.rooms[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if r.expired(entry, r.now()) {
		r.mu.Lock()
		if current, ok := r.rooms[id]; ok && r.expired(current, r.now()) {
			delete(r.rooms, id)
		}
		r.mu.Unlock()
		return nil, ErrNotFound
	}

	stored := entry.snap
	stored.State = stored.State.Clone()
	return &stored, nil
}

func (r *MemoryGameRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	return nil
}

// Sweep drops every expired snapshot and returns how many it dropped.
func (r *MemoryGameRepository) Sweep(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	dropped := 0
	for id, entry := range r.rooms {
		if r.expired(entry, now) {
			delete(r.rooms, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of snapshots held, expired or not.
func (r *MemoryGameRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *MemoryGameRepository) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expires.IsZero() && !now.Before(entry.expires)
}
