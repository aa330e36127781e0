package models

import "github.com/tzekovic/OX-Project/pkg/proto"

// CreateRoomRequest defines the structure for a room creation request.
// Empty fields fall back to PvP on easy.
type CreateRoomRequest struct {
	Mode       string `json:"mode" binding:"omitempty,oneof=pvp pvai"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// CreateRoomResponse carries the new room's ID and the token that lets its
// holder play in it.
type CreateRoomResponse struct {
	RoomID string                       `json:"room_id"`
	Token  string                       `json:"token"`
	State  *proto.ServerToClientMessage `json:"state"`
}

// MoveRequest defines the structure for a move request. The range of Cell
// is checked by the game itself.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"required"`
}

// SettingsRequest changes the mode, the difficulty, or both. Either change
// starts a fresh game.
type SettingsRequest struct {
	Mode       string `json:"mode" binding:"omitempty,oneof=pvp pvai"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}
