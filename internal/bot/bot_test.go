package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzekovic/OX-Project/internal/game"
)

func TestNewSeededSelector_Deterministic(t *testing.T) {
	state := game.NewGame()
	a := NewSeededSelector(42)
	b := NewSeededSelector(42)

	for i := 0; i < 20; i++ {
		ca, err := a.SelectMove(state, Easy)
		require.NoError(t, err)
		cb, err := b.SelectMove(state, Easy)
		require.NoError(t, err)
		assert.Equal(t, ca, cb, "draw %d", i)
	}
}

func TestNewSelector_NilSourceUsesGlobal(t *testing.T) {
	s := NewSelector(nil)
	cell, err := s.SelectMove(game.NewGame(), Easy)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cell, 0)
	assert.Less(t, cell, game.BoardSize)
}

func TestSelector_PlaysFullGameAgainstItself(t *testing.T) {
	s := NewSeededSelector(7)
	state := game.NewGame()

	for step := 0; step < 100 && state.Active; step++ {
		cell, err := s.SelectMove(state, Hard)
		require.NoError(t, err)

		next, _, err := game.ApplyMove(state, cell)
		require.NoError(t, err, "selector chose an illegal cell %d on\n%s", cell, state.Board)
		state = next
	}
}
