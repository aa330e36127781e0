package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/player"
	"github.com/tzekovic/OX-Project/internal/validator"
	"github.com/tzekovic/OX-Project/pkg/proto"
)

// HandleMessage handles a message from a player. It acts as a dispatcher.
// Rejected messages are answered with an error message to p only.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) error {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	err := r.dispatch(ctx, rawMessage, span)
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "message rejected", "player.id", p.ID, "room.id", r.ID, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "message rejected")

	r.mu.Lock()
	defer r.mu.Unlock()
	if sendErr := r.send(ctx, p, &proto.ServerToClientMessage{
		Type:   proto.TypeError,
		RoomID: r.ID,
		Reason: describe(err),
	}); sendErr != nil {
		span.RecordError(sendErr)
	}
	return err
}

func (r *Room) dispatch(ctx context.Context, rawMessage []byte, span trace.Span) error {
	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}
	if err := validator.GetValidator().Struct(message); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		if message.Cell == nil {
			return ErrMissingCell
		}
		_, err := r.Move(ctx, *message.Cell)
		return err
	case proto.TypeRestart:
		return r.Restart(ctx)
	case proto.TypeMode:
		mode, err := ParseMode(message.Mode)
		if err != nil {
			return err
		}
		return r.SetMode(ctx, mode)
	case proto.TypeDifficulty:
		d, err := bot.ParseDifficulty(message.Difficulty)
		if err != nil {
			return err
		}
		return r.SetDifficulty(ctx, d)
	}
	return fmt.Errorf("unsupported message type %q", message.Type)
}
