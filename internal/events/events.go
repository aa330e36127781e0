package events

import (
	"encoding/json"
	"fmt"
)

// Event types published for every room.
const (
	TypeMoveApplied = "move_applied"
	TypeGameWon     = "game_won"
	TypeGameReset   = "game_reset"
)

// RoomChannel returns the Pub/Sub channel carrying a room's events.
func RoomChannel(roomID string) string {
	return fmt.Sprintf("channel:room:%s", roomID)
}

// Event represents a message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MoveAppliedPayload is the payload for the "move_applied" event.
type MoveAppliedPayload struct {
	RoomID  string `json:"room_id"`
	Player  string `json:"player"`
	Cell    int    `json:"cell"`
	Evicted int    `json:"evicted"`
	ByAI    bool   `json:"by_ai"`
}

// GameWonPayload is the payload for the "game_won" event. Subscribers
// use it to trigger the celebration effect.
type GameWonPayload struct {
	RoomID string `json:"room_id"`
	Winner string `json:"winner"`
	Line   []int  `json:"line"`
}

// GameResetPayload is the payload for the "game_reset" event.
type GameResetPayload struct {
	RoomID     string `json:"room_id"`
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

// Encode wraps payload in an Event envelope and marshals it.
func Encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return data, nil
}
