package game

import (
	"errors"
	"slices"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// OutcomeKind is the result category of an applied move.
type OutcomeKind string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Move outcomes
	Continue OutcomeKind = "continue"
	Win      OutcomeKind = "win"
	// Draw needs a full board, which the 3-mark limit never allows.
	Draw OutcomeKind = "draw"

	// Board boundaries
	BoardSize  = 9
	CenterCell = 4
	// MaxMarks is the number of live marks a player may have on the board.
	MaxMarks = 3
	// NoCell is reported when a move evicted nothing.
	NoCell = -1
)

var (
	ErrGameOver    = errors.New("game already finished")
	ErrOutOfRange  = errors.New("cell out of range")
	ErrInvalidMove = errors.New("cell already occupied")
)

// winningLines lists rows, then columns, then diagonals.
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Corners are the four corner cells in ascending order.
var Corners = [4]int{0, 2, 6, 8}

// Board is the 3x3 grid stored row-major.
type Board [BoardSize]PlayerMark

// GameState is the complete state of one game. It is a value: ApplyMove
// never mutates the state it is given.
type GameState struct {
	Board         Board      `json:"board"`
	XMoves        []int      `json:"x_moves"`
	OMoves        []int      `json:"o_moves"`
	CurrentPlayer PlayerMark `json:"current_player"`
	Active        bool       `json:"active"`
	Winner        PlayerMark `json:"winner,omitempty"`
	WinningLine   []int      `json:"winning_line,omitempty"`
	MoveCount     int        `json:"move_count"`
}

// Outcome describes what a successful move did.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Player  PlayerMark  `json:"player"`
	Cell    int         `json:"cell"`
	Evicted int         `json:"evicted"`
	Line    []int       `json:"line,omitempty"`
}

// NewGame returns an empty board with X to move.
func NewGame() GameState {
	return GameState{
		XMoves:        []int{},
		OMoves:        []int{},
		CurrentPlayer: PlayerX,
		Active:        true,
	}
}

// Opponent returns the other player's mark.
func Opponent(p PlayerMark) PlayerMark {
	if p == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Queue returns the live cells of p, oldest first.
func (s GameState) Queue(p PlayerMark) []int {
	if p == PlayerX {
		return s.XMoves
	}
	return s.OMoves
}

func (s *GameState) setQueue(p PlayerMark, q []int) {
	if p == PlayerX {
		s.XMoves = q
	} else {
		s.OMoves = q
	}
}

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	c := s
	c.XMoves = slices.Clone(s.XMoves)
	c.OMoves = slices.Clone(s.OMoves)
	c.WinningLine = slices.Clone(s.WinningLine)
	return c
}

// ApplyMove plays the current player's mark at cell and returns the
// successor state. On error the returned state is s unchanged.
func ApplyMove(s GameState, cell int) (GameState, Outcome, error) {
	if !s.Active {
		return s, Outcome{}, ErrGameOver
	}
	if cell < 0 || cell >= BoardSize {
		return s, Outcome{}, ErrOutOfRange
	}
	if s.Board[cell] != None {
		return s, Outcome{}, ErrInvalidMove
	}

	next := s.Clone()
	player := next.CurrentPlayer

	board, queue, evicted := place(next.Board, next.Queue(player), cell, player)
	next.Board = board
	next.setQueue(player, queue)
	next.MoveCount++

	outcome := Outcome{Kind: Continue, Player: player, Cell: cell, Evicted: evicted}

	// Only the mover can have completed a line, and only on the post-eviction board.
	if line, ok := WinningLine(next.Board, player); ok {
		next.Active = false
		next.Winner = player
		next.WinningLine = line[:]
		outcome.Kind = Win
		outcome.Line = slices.Clone(next.WinningLine)
		return next, outcome, nil
	}

	if IsBoardFull(next.Board) {
		next.Active = false
		outcome.Kind = Draw
		return next, outcome, nil
	}

	next.CurrentPlayer = Opponent(player)
	return next, outcome, nil
}

// Simulate plays p at cell using p's real move queue, including the
// eviction it would trigger, and returns the resulting board. Turn order
// and activity are ignored.
func Simulate(s GameState, cell int, p PlayerMark) Board {
	board, _, _ := place(s.Board, s.Queue(p), cell, p)
	return board
}

// place marks cell, records it in queue and evicts the oldest mark when
// the queue overflows. The returned queue never aliases the input.
func place(b Board, queue []int, cell int, p PlayerMark) (Board, []int, int) {
	b[cell] = p
	q := make([]int, 0, len(queue)+1)
	q = append(q, queue...)
	q = append(q, cell)

	evicted := NoCell
	if len(q) > MaxMarks {
		evicted = q[0]
		q = q[1:]
		b[evicted] = None
	}
	return b, q, evicted
}

// CheckWin reports whether p occupies any winning triple.
func CheckWin(b Board, p PlayerMark) bool {
	_, ok := WinningLine(b, p)
	return ok
}

// WinningLine returns the first triple fully occupied by p.
func WinningLine(b Board, p PlayerMark) ([3]int, bool) {
	if p == None {
		return [3]int{}, false
	}
	for _, line := range winningLines {
		if b[line[0]] == p && b[line[1]] == p && b[line[2]] == p {
			return line, true
		}
	}
	return [3]int{}, false
}

// AvailableMoves returns the empty cells in ascending order.
func AvailableMoves(b Board) []int {
	moves := make([]int, 0, BoardSize)
	for i, cell := range b {
		if cell == None {
			moves = append(moves, i)
		}
	}
	return moves
}

// IsBoardFull checks if every cell is occupied.
func IsBoardFull(b Board) bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}
