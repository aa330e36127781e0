package room

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/game"
	"github.com/tzekovic/OX-Project/internal/player"
	"github.com/tzekovic/OX-Project/internal/repository"
	"github.com/tzekovic/OX-Project/pkg/proto"
)

// Subscribe registers p for state updates and sends it the current state.
func (r *Room) Subscribe(p *player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if err := r.send(context.Background(), p, r.updateMessage(false)); err != nil {
		return err
	}
	r.listeners[p.ID] = p
	r.lastActive = r.now()
	return nil
}

// Unsubscribe removes the listener with the given ID.
func (r *Room) Unsubscribe(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners, playerID)
}

// ListenerCount returns the number of subscribed players.
func (r *Room) ListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// State returns the message a newly attached client would receive.
func (r *Room) State() *proto.ServerToClientMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateMessage(false)
}

// Snapshot returns the stored form of the room.
func (r *Room) Snapshot() *repository.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// GameState returns a copy of the live game.
func (r *Room) GameState() game.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// LastActive returns the time of the last move, reset or subscription.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Close stops any pending AI move and disconnects every listener.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.cancelAI()
	for id, p := range r.listeners {
		if err := p.Conn.Close(); err != nil {
			slog.Warn("error closing player connection", "room.id", r.ID, "player.id", id, "error", err)
		}
		delete(r.listeners, id)
	}
}

// updateMessage must be called with mu held.
func (r *Room) updateMessage(celebrate bool) *proto.ServerToClientMessage {
	board := r.state.Board
	msg := &proto.ServerToClientMessage{
		Type:        proto.TypeUpdate,
		RoomID:      r.ID,
		Board:       &board,
		Active:      r.state.Active,
		Winner:      r.state.Winner,
		WinningLine: r.state.WinningLine,
		Mode:        string(r.mode),
		Difficulty:  string(r.difficulty),
		AIThinking:  r.state.Active && r.aiTurn(),
		Celebrate:   celebrate,
	}
	if r.state.Active {
		msg.Next = r.state.CurrentPlayer
		if q := r.state.Queue(r.state.CurrentPlayer); len(q) == game.MaxMarks {
			oldest := q[0]
			msg.NextToVanish = &oldest
		}
	}
	if r.lastOutcome != nil {
		outcome := *r.lastOutcome
		msg.LastMove = &outcome
	}
	return msg
}

// broadcast sends a message to all subscribed players. A player whose write
// fails is closed and dropped. It must be called with mu held, which also
// serializes writes on each connection.
func (r *Room) broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	_, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for id, p := range r.listeners {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.WarnContext(ctx, "dropping player after failed write", "room.id", r.ID, "player.id", id, "error", err)
			span.RecordError(err)
			_ = p.Conn.Close()
			delete(r.listeners, id)
		}
	}
}

// send writes a message to one player. It must be called with mu held.
func (r *Room) send(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "room.id", r.ID, "error", err)
		return err
	}
	return nil
}
