package bot

import (
	"math/rand/v2"
	"sync"

	"github.com/tzekovic/OX-Project/internal/game"
)

// Selector implements the room.MoveSelector interface. The zero value
// draws from the global math/rand/v2 source.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector drawing from src. A nil src uses the
// global source.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		return &Selector{}
	}
	return &Selector{rng: rand.New(src)}
}

// NewSeededSelector creates a Selector with a deterministic PCG source.
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *Selector) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

var defaultSelector = &Selector{}

// CalculateNextMove picks a move with the shared default Selector.
// Unrecognised difficulties fall back to hard.
func CalculateNextMove(state game.GameState, difficulty string) (int, error) {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		d = Hard
	}
	return defaultSelector.SelectMove(state, d)
}
