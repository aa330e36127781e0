package bot

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzekovic/OX-Project/internal/game"
)

// stateWith builds an active state from move queues given oldest first.
func stateWith(xMoves, oMoves []int, turn game.PlayerMark) game.GameState {
	s := game.NewGame()
	for _, c := range xMoves {
		s.Board[c] = game.PlayerX
	}
	for _, c := range oMoves {
		s.Board[c] = game.PlayerO
	}
	s.XMoves = slices.Clone(xMoves)
	s.OMoves = slices.Clone(oMoves)
	s.CurrentPlayer = turn
	return s
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDifficulty("impossible")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestSelectMove_TakesWinningMove(t *testing.T) {
	// O holds 0 and 1; cell 2 completes the top row.
	state := stateWith([]int{3, 4}, []int{0, 1}, game.PlayerO)

	for _, d := range []Difficulty{Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			cell, err := NewSeededSelector(1).SelectMove(state, d)
			require.NoError(t, err)
			assert.Equal(t, 2, cell)
		})
	}
}

func TestSelectMove_BlocksOpponent(t *testing.T) {
	// X holds 0 and 1, O has no winning move of its own.
	state := stateWith([]int{0, 1}, []int{4}, game.PlayerO)

	for _, d := range []Difficulty{Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			cell, err := NewSeededSelector(1).SelectMove(state, d)
			require.NoError(t, err)
			assert.Equal(t, 2, cell)
		})
	}
}

func TestSelectMove_WinBeatsBlock(t *testing.T) {
	// Both sides threaten: X would finish {0,1,2} after 8 vanishes, O
	// finishes {3,4,5}.
	state := stateWith([]int{8, 0, 1}, []int{3, 4}, game.PlayerO)

	cell, err := NewSeededSelector(1).SelectMove(state, Medium)
	require.NoError(t, err)
	assert.Equal(t, 5, cell)
}

func TestSelectMove_FirstWinInAscendingOrder(t *testing.T) {
	// Marks placed outside the queues never vanish, which opens two
	// winning cells for O: 1 ({1,4,7}) and 5 ({3,4,5}).
	state := game.NewGame()
	for _, c := range []int{3, 4, 7} {
		state.Board[c] = game.PlayerO
	}
	state.CurrentPlayer = game.PlayerO

	for seed := uint64(0); seed < 10; seed++ {
		cell, err := NewSeededSelector(seed).SelectMove(state, Medium)
		require.NoError(t, err)
		assert.Equal(t, 1, cell)
	}
}

func TestSelectMove_OnlySurvivingLineCounts(t *testing.T) {
	// O holds 0, 4, 6 with 0 the oldest. 3 and 8 would finish lines
	// through 0, which vanishes; only 2 ({2,4,6}) wins.
	state := stateWith([]int{1, 5}, []int{0, 4, 6}, game.PlayerO)

	cell, err := NewSeededSelector(1).SelectMove(state, Medium)
	require.NoError(t, err)
	assert.Equal(t, 2, cell)
}

func TestSelectMove_IgnoresWinThatVanishes(t *testing.T) {
	// O holds 0, 1, 5 with 0 the oldest: playing 2 would evict 0 and
	// break the top row. X threatens {6,7,8} and must be blocked.
	state := stateWith([]int{6, 7}, []int{0, 1, 5}, game.PlayerO)

	for _, d := range []Difficulty{Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			cell, err := NewSeededSelector(1).SelectMove(state, d)
			require.NoError(t, err)
			assert.Equal(t, 8, cell)
		})
	}
}

func TestSelectMove_IgnoresThreatThatVanishes(t *testing.T) {
	// X holds 6, 7, 2 with 6 the oldest: X playing 8 evicts 6, so there is
	// nothing to block. Hard falls through to the center.
	state := stateWith([]int{6, 7, 2}, []int{0, 5}, game.PlayerO)

	cell, err := NewSeededSelector(1).SelectMove(state, Hard)
	require.NoError(t, err)
	assert.Equal(t, game.CenterCell, cell)
}

func TestSelectMove_HardEmptyBoardTakesCenter(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		cell, err := NewSeededSelector(seed).SelectMove(game.NewGame(), Hard)
		require.NoError(t, err)
		assert.Equal(t, game.CenterCell, cell)
	}
}

func TestSelectMove_HardPrefersCorners(t *testing.T) {
	// Center taken, no threats on either side.
	state := stateWith([]int{4}, nil, game.PlayerO)
	corners := game.Corners[:]

	seen := map[int]bool{}
	for seed := uint64(0); seed < 64; seed++ {
		cell, err := NewSeededSelector(seed).SelectMove(state, Hard)
		require.NoError(t, err)
		assert.Contains(t, corners, cell)
		seen[cell] = true
	}
	assert.Greater(t, len(seen), 1, "corner choice should be random")
}

func TestSelectMove_HardFallsBackToSides(t *testing.T) {
	// Center and corners occupied. Neither side can finish a line once
	// its oldest mark vanishes.
	state := stateWith([]int{0, 2, 4}, []int{6, 1, 8}, game.PlayerO)
	sides := []int{3, 5, 7}

	seen := map[int]bool{}
	for seed := uint64(0); seed < 64; seed++ {
		cell, err := NewSeededSelector(seed).SelectMove(state, Hard)
		require.NoError(t, err)
		assert.Contains(t, sides, cell)
		seen[cell] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestSelectMove_EasyPicksEmptyCells(t *testing.T) {
	state := stateWith([]int{0, 4}, []int{8}, game.PlayerO)
	available := game.AvailableMoves(state.Board)

	seen := map[int]bool{}
	for seed := uint64(0); seed < 100; seed++ {
		cell, err := NewSeededSelector(seed).SelectMove(state, Easy)
		require.NoError(t, err)
		assert.Contains(t, available, cell)
		seen[cell] = true
	}
	assert.Greater(t, len(seen), 1, "easy should not always pick the same cell")
}

func TestSelectMove_Errors(t *testing.T) {
	t.Run("full board", func(t *testing.T) {
		state := game.NewGame()
		for i := range state.Board {
			state.Board[i] = game.PlayerX
		}
		_, err := NewSeededSelector(1).SelectMove(state, Easy)
		assert.ErrorIs(t, err, ErrNoMovesAvailable)
	})

	t.Run("inactive game", func(t *testing.T) {
		state := game.NewGame()
		state.Active = false
		_, err := NewSeededSelector(1).SelectMove(state, Hard)
		assert.ErrorIs(t, err, game.ErrGameOver)
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		_, err := NewSeededSelector(1).SelectMove(game.NewGame(), Difficulty("brutal"))
		assert.ErrorIs(t, err, ErrUnknownDifficulty)
	})
}

func TestSelectMove_DoesNotMutateState(t *testing.T) {
	state := stateWith([]int{6, 7}, []int{0, 1, 5}, game.PlayerO)
	before := state.Clone()

	_, err := NewSeededSelector(1).SelectMove(state, Hard)
	require.NoError(t, err)
	assert.Equal(t, before, state)
}

func TestCalculateNextMove_DefaultsToHard(t *testing.T) {
	cell, err := CalculateNextMove(game.NewGame(), "not-a-tier")
	require.NoError(t, err)
	assert.Equal(t, game.CenterCell, cell)
}
