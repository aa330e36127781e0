package hub

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/repository"
	"github.com/tzekovic/OX-Project/internal/room"
)

// Run evicts idle rooms until ctx is cancelled, then closes every room.
// Evicted rooms keep their stored snapshot and are restored on next access
// until it expires.
func (h *Hub) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Room reaper started", "hub.idle_ttl", h.idleTTL, "hub.interval", h.reapInterval)

	ticker := time.NewTicker(h.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("Room reaper stopped")
			return
		case <-ticker.C:
			h.reapIdle(ctx)
		}
	}
}

// reapIdle closes rooms without listeners whose last activity is older
// than the idle TTL, and returns how many it closed. Stores that do not
// expire snapshots on their own are swept as well.
func (h *Hub) reapIdle(ctx context.Context) int {
	if s, ok := h.gameRepo.(repository.Sweeper); ok {
		if n := s.Sweep(ctx); n > 0 {
			slog.InfoContext(ctx, "Expired room snapshots dropped", "hub.dropped", n)
		}
	}

	cutoff := h.now().Add(-h.idleTTL)

	h.mu.Lock()
	var idle []*room.Room
	for id, r := range h.rooms {
		if r.ListenerCount() == 0 && r.LastActive().Before(cutoff) {
			idle = append(idle, r)
			delete(h.rooms, id)
		}
	}
	h.mu.Unlock()

	if len(idle) == 0 {
		return 0
	}

	_, span := tracer.Start(ctx, "hub.reapIdle", trace.WithAttributes(attribute.Int("hub.reaped", len(idle))))
	defer span.End()

	for _, r := range idle {
		r.Close()
		slog.InfoContext(ctx, "Idle room evicted", "room.id", r.ID)
	}
	return len(idle)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*room.Room)
	h.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}
