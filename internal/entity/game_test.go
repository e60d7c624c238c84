package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameState_ZeroValue(t *testing.T) {
	// Given: a zero GameState
	var state GameState

	// Then: it is the initial state
	assert.True(t, state.Board.IsEmpty())
	assert.Equal(t, PlayerX, state.CurrentPlayer)
	assert.Equal(t, OutcomeNone, state.Outcome.Kind)
	assert.False(t, state.IsFinished())
}

func TestPlayer(t *testing.T) {
	t.Run("Next alternates", func(t *testing.T) {
		assert.Equal(t, PlayerO, PlayerX.Next())
		assert.Equal(t, PlayerX, PlayerO.Next())
	})

	t.Run("Mark", func(t *testing.T) {
		assert.Equal(t, X, PlayerX.Mark())
		assert.Equal(t, O, PlayerO.Mark())
	})
}

func TestBoard_Count(t *testing.T) {
	// Given: a board with two X and one O
	board := Board{
		{X, O, Empty},
		{Empty, X, Empty},
		{Empty, Empty, Empty},
	}

	// Then: counts are per cell value
	assert.Equal(t, 2, board.Count(X))
	assert.Equal(t, 1, board.Count(O))
	assert.Equal(t, 6, board.Count(Empty))
	assert.False(t, board.IsEmpty())
}

func TestCoord_InRange(t *testing.T) {
	assert.True(t, Coord{Row: 0, Col: 0}.InRange())
	assert.True(t, Coord{Row: 2, Col: 2}.InRange())
	assert.False(t, Coord{Row: -1, Col: 0}.InRange())
	assert.False(t, Coord{Row: 0, Col: 3}.InRange())
}

func TestOutcome_Message(t *testing.T) {
	assert.Equal(t, "x wins!", Win(PlayerX).Message())
	assert.Equal(t, "o wins!", Win(PlayerO).Message())
	assert.Equal(t, "Cat's game!", Draw().Message())
	assert.Empty(t, Outcome{}.Message())
}

func TestGameState_JSON(t *testing.T) {
	t.Run("Encodes marks as lowercase strings", func(t *testing.T) {
		// Given: a finished game won by O
		state := GameState{
			Board: Board{
				{O, O, O},
				{X, X, Empty},
				{X, Empty, Empty},
			},
			CurrentPlayer: PlayerX,
			Outcome:       Win(PlayerO),
		}

		// When: the state is encoded
		data, err := json.Marshal(state)
		require.NoError(t, err)

		// Then: the document uses display marks
		assert.JSONEq(t, `{
			"board": [["o","o","o"],["x","x",""],["x","",""]],
			"current_player": "x",
			"outcome": {"kind": "win", "winner": "o"}
		}`, string(data))

		// And: decoding restores the same value
		var decoded GameState
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, state, decoded)
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		var decoded GameState
		err := json.Unmarshal([]byte(`{"board":[["z","",""],["","",""],["","",""]]}`), &decoded)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownMark)
	})
}
