package bot

import (
	"errors"
	"fmt"

	"github.com/tzekovic/OX-Project/internal/game"
)

// Difficulty selects the AI tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var (
	ErrNoMovesAvailable  = errors.New("no moves available")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// ParseDifficulty maps a user supplied string onto a tier.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// SelectMove determines the next cell for state.CurrentPlayer.
func (s *Selector) SelectMove(state game.GameState, difficulty Difficulty) (int, error) {
	if !state.Active {
		return game.NoCell, game.ErrGameOver
	}

	moves := game.AvailableMoves(state.Board)
	if len(moves) == 0 {
		return game.NoCell, ErrNoMovesAvailable
	}

	switch difficulty {
	case Easy:
		return s.easyMove(moves), nil
	case Medium:
		return s.mediumMove(state, moves), nil
	case Hard:
		return s.hardMove(state, moves), nil
	}
	return game.NoCell, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
}

// easyMove makes a completely random move.
func (s *Selector) easyMove(moves []int) int {
	return moves[s.intN(len(moves))]
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func (s *Selector) mediumMove(state game.GameState, moves []int) int {
	if cell, ok := winOrBlock(state, moves); ok {
		return cell
	}
	return s.easyMove(moves)
}

// hardMove adds a center, then corner preference to mediumMove.
func (s *Selector) hardMove(state game.GameState, moves []int) int {
	if cell, ok := winOrBlock(state, moves); ok {
		return cell
	}

	if state.Board[game.CenterCell] == game.None {
		return game.CenterCell
	}

	availableCorners := make([]int, 0, len(game.Corners))
	for _, corner := range game.Corners {
		if state.Board[corner] == game.None {
			availableCorners = append(availableCorners, corner)
		}
	}
	if len(availableCorners) > 0 {
		return availableCorners[s.intN(len(availableCorners))]
	}

	return s.easyMove(moves)
}

func winOrBlock(state game.GameState, moves []int) (int, bool) {
	botMark := state.CurrentPlayer

	// 1. Win: Check if the bot can win in the next move
	if cell, ok := findWinningMove(state, moves, botMark); ok {
		return cell, true
	}

	// 2. Block: Check if the opponent is about to win and block them
	return findWinningMove(state, moves, game.Opponent(botMark))
}

// findWinningMove returns the first cell, in the order of moves, where
// mark completes a line once its own oldest mark has vanished.
func findWinningMove(state game.GameState, moves []int, mark game.PlayerMark) (int, bool) {
	for _, cell := range moves {
		if game.CheckWin(game.Simulate(state, cell, mark), mark) {
			return cell, true
		}
	}
	return game.NoCell, false
}
