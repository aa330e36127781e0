package proto

import "github.com/tzekovic/OX-Project/internal/game"

// Client message types.
const (
	TypeMove       = "move"
	TypeRestart    = "restart"
	TypeMode       = "mode"
	TypeDifficulty = "difficulty"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move restart mode difficulty"`
	Cell       *int   `json:"cell,omitempty"`
	Mode       string `json:"mode,omitempty" validate:"omitempty,oneof=pvp pvai"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type        string          `json:"type" validate:"required"`
	RoomID      string          `json:"room_id,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Board       *game.Board     `json:"board,omitempty"`
	Next        game.PlayerMark `json:"next,omitempty"`
	Active      bool            `json:"active"`
	Winner      game.PlayerMark `json:"winner,omitempty"`
	WinningLine []int           `json:"winning_line,omitempty"`
	LastMove    *game.Outcome   `json:"last_move,omitempty"`
	// NextToVanish is the cell the side to move loses on its next placement.
	NextToVanish *int   `json:"next_to_vanish,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	AIThinking   bool   `json:"ai_thinking"`
	// Celebrate is set only on the update that reports a fresh win.
	Celebrate bool `json:"celebrate,omitempty"`
}
