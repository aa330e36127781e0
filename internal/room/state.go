package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/events"
	"github.com/tzekovic/OX-Project/internal/game"
	"github.com/tzekovic/OX-Project/internal/repository"
)

// Move applies a human move. In PvAI the AI answers once the think delay
// has elapsed, or before Move returns when the delay is zero.
func (r *Room) Move(ctx context.Context, cell int) (game.GameState, error) {
	ctx, span := tracer.Start(ctx, "room.Move", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("move.cell", cell),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return game.GameState{}, ErrClosed
	}
	if r.state.Active && r.aiTurn() {
		span.SetStatus(codes.Error, "not your turn")
		return r.state.Clone(), ErrNotYourTurn
	}

	if err := r.apply(ctx, cell, false); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "move rejected")
		return r.state.Clone(), err
	}
	r.scheduleAI(ctx)
	return r.state.Clone(), nil
}

// Restart starts a fresh game keeping the current mode and difficulty.
func (r *Room) Restart(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.reset(ctx)
	return nil
}

// SetMode switches between PvP and PvAI and starts a fresh game.
func (r *Room) SetMode(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.mode = mode
	r.reset(ctx)
	return nil
}

// SetDifficulty changes the AI tier and starts a fresh game.
func (r *Room) SetDifficulty(ctx context.Context, d bot.Difficulty) error {
	if _, err := bot.ParseDifficulty(string(d)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.difficulty = d
	r.reset(ctx)
	return nil
}

// Resume schedules the AI move of a restored room whose AI was left to move.
func (r *Room) Resume(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.scheduleAI(ctx)
}

// aiTurn reports whether the side to move belongs to the AI.
func (r *Room) aiTurn() bool {
	return r.mode == PvAI && r.state.CurrentPlayer == aiMark
}

// reset must be called with mu held.
func (r *Room) reset(ctx context.Context) {
	r.cancelAI()
	r.state = game.NewGame()
	r.lastOutcome = nil
	r.lastActive = r.now()

	slog.InfoContext(ctx, "Game reset", "room.id", r.ID, "room.mode", r.mode, "room.difficulty", r.difficulty)

	r.persist(ctx)
	r.publish(ctx, events.TypeGameReset, events.GameResetPayload{
		RoomID:     r.ID,
		Mode:       string(r.mode),
		Difficulty: string(r.difficulty),
	})
	r.broadcast(ctx, r.updateMessage(false))
}

// cancelAI drops any AI move scheduled for the current game.
func (r *Room) cancelAI() {
	r.generation++
	r.aiPending = false
	if r.aiTimer != nil {
		r.aiTimer.Stop()
		r.aiTimer = nil
	}
}

// apply runs one move through the engine and fans the result out. It must
// be called with mu held.
func (r *Room) apply(ctx context.Context, cell int, byAI bool) error {
	next, outcome, err := game.ApplyMove(r.state, cell)
	if err != nil {
		return err
	}
	r.state = next
	r.lastOutcome = &outcome
	r.lastActive = r.now()

	attrs := metric.WithAttributes(attribute.String("room.mode", string(r.mode)), attribute.Bool("move.ai", byAI))
	moveCounter.Add(ctx, 1, attrs)
	if byAI {
		aiCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("bot.difficulty", string(r.difficulty))))
	}

	slog.DebugContext(ctx, "Move applied",
		"room.id", r.ID,
		"move.player", outcome.Player,
		"move.cell", outcome.Cell,
		"move.evicted", outcome.Evicted,
		"move.ai", byAI,
	)

	r.persist(ctx)
	r.publish(ctx, events.TypeMoveApplied, events.MoveAppliedPayload{
		RoomID:  r.ID,
		Player:  string(outcome.Player),
		Cell:    outcome.Cell,
		Evicted: outcome.Evicted,
		ByAI:    byAI,
	})

	if outcome.Kind == game.Win {
		winCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("game.winner", string(outcome.Player))))
		slog.InfoContext(ctx, "Game won", "room.id", r.ID, "game.winner", outcome.Player, "game.line", outcome.Line)
		r.publish(ctx, events.TypeGameWon, events.GameWonPayload{
			RoomID: r.ID,
			Winner: string(outcome.Player),
			Line:   outcome.Line,
		})
	}

	r.broadcast(ctx, r.updateMessage(outcome.Kind == game.Win))
	return nil
}

// scheduleAI queues the AI reply if it is the AI's turn. It must be called
// with mu held.
func (r *Room) scheduleAI(ctx context.Context) {
	if !r.state.Active || !r.aiTurn() || r.aiPending {
		return
	}
	r.aiPending = true

	if r.thinkDelay <= 0 {
		r.playAI(ctx)
		return
	}

	gen := r.generation
	ctx = context.WithoutCancel(ctx)
	r.aiTimer = time.AfterFunc(r.thinkDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.closed || r.generation != gen {
			return
		}
		r.aiTimer = nil
		r.playAI(ctx)
	})
}

// playAI must be called with mu held.
func (r *Room) playAI(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.playAI", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("bot.difficulty", string(r.difficulty)),
	))
	defer span.End()

	r.aiPending = false
	if !r.state.Active || !r.aiTurn() {
		return
	}

	cell, err := r.selector.SelectMove(r.state.Clone(), r.difficulty)
	if err == nil {
		err = r.apply(ctx, cell, true)
	}
	if err != nil {
		slog.ErrorContext(ctx, "AI failed to move", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "AI failed to move")
	}
}

// persist must be called with mu held.
func (r *Room) persist(ctx context.Context) {
	if err := r.gameRepo.Save(ctx, r.snapshotLocked()); err != nil {
		slog.ErrorContext(ctx, "Failed to save room", "room.id", r.ID, "error", err)
	}
}

func (r *Room) publish(ctx context.Context, eventType string, payload any) {
	data, err := events.Encode(eventType, payload)
	if err == nil {
		err = r.publisher.Publish(ctx, events.RoomChannel(r.ID), data)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "room.id", r.ID, "event", eventType, "error", err)
	}
}

func (r *Room) snapshotLocked() *repository.RoomSnapshot {
	return &repository.RoomSnapshot{
		RoomID:     r.ID,
		Mode:       string(r.mode),
		Difficulty: string(r.difficulty),
		State:      r.state.Clone(),
		UpdatedAt:  r.now(),
	}
}

// describe is the human readable reason sent to clients.
func describe(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		return "That cell is already taken."
	case errors.Is(err, game.ErrGameOver):
		return "The game is over. Restart to play again."
	case errors.Is(err, game.ErrOutOfRange):
		return "That cell is not on the board."
	case errors.Is(err, ErrNotYourTurn):
		return "Wait for the AI to move."
	default:
		return fmt.Sprint(err)
	}
}
