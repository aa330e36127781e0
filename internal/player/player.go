package player

import "time"

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Player is a client watching and driving a room: a browser tab over a
// websocket, or the terminal client.
type Player struct {
	ID       string
	Conn     Connection
	JoinedAt time.Time
}

// NewPlayer creates a new player.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{
		ID:       id,
		Conn:     conn,
		JoinedAt: time.Now(),
	}
}
