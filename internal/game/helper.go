package game

import (
	"fmt"
	"strings"
)

// Redis hash fields of a stored room.
const (
	FieldState      = "state"
	FieldMode       = "mode"
	FieldDifficulty = "difficulty"
	FieldUpdatedAt  = "updated_at"
)

// String renders the board as three lines, "." for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	for i, cell := range b {
		if cell == None {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(cell))
		}
		if i%3 == 2 && i != BoardSize-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Count returns how many cells hold p.
func (b Board) Count(p PlayerMark) int {
	n := 0
	for _, cell := range b {
		if cell == p {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants of a state loaded from
// outside the engine.
func (s GameState) Validate() error {
	if s.CurrentPlayer != PlayerX && s.CurrentPlayer != PlayerO {
		return fmt.Errorf("invalid current player %q", s.CurrentPlayer)
	}
	for i, cell := range s.Board {
		if cell != None && cell != PlayerX && cell != PlayerO {
			return fmt.Errorf("invalid mark %q at cell %d", cell, i)
		}
	}
	for _, p := range []PlayerMark{PlayerX, PlayerO} {
		q := s.Queue(p)
		if len(q) > MaxMarks {
			return fmt.Errorf("player %s has %d live marks", p, len(q))
		}
		if len(q) != s.Board.Count(p) {
			return fmt.Errorf("player %s queue has %d cells but board has %d marks", p, len(q), s.Board.Count(p))
		}
		seen := make(map[int]bool, len(q))
		for _, cell := range q {
			if cell < 0 || cell >= BoardSize || s.Board[cell] != p || seen[cell] {
				return fmt.Errorf("player %s queue references cell %d", p, cell)
			}
			seen[cell] = true
		}
	}
	return nil
}
