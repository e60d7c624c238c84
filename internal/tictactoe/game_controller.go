package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// Line is one of the straight triples of cells that can win the game.
type Line [entity.BoardSize]entity.Coord

// Lines are checked in this order: both diagonals, then rows, then columns.
var Lines = [8]Line{
	{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 0}},
	{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
	{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}},
	{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}},
	{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}},
}

// Initial returns a fresh game: empty board, X to move, no outcome.
func Initial() entity.GameState {
	return entity.GameState{}
}

// Reset discards the given game and returns a fresh one.
func Reset(_ entity.GameState) entity.GameState {
	return Initial()
}

// ApplyMove places the current player's mark at (row, col) and passes the turn.
// An illegal move leaves the game untouched and the same state is returned.
func ApplyMove(state entity.GameState, row, col int) entity.GameState {
	if err := Validate(state, row, col); err != nil {
		return state
	}

	next := state
	next.Board[row][col] = state.CurrentPlayer.Mark()
	next.CurrentPlayer = state.CurrentPlayer.Next()
	next.Outcome = EvaluateOutcome(next.Board)

	return next
}

// Validate reports why ApplyMove would reject the move, or nil if it is legal.
func Validate(state entity.GameState, row, col int) error {
	if state.IsFinished() {
		return apperror.ErrGameFinished
	}

	coord := entity.Coord{Row: row, Col: col}
	if !coord.InRange() {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, row, col)
	}

	if state.Board[row][col] != entity.Empty {
		return apperror.ErrCellOccupied
	}

	return nil
}

// EvaluateOutcome classifies the board. A line of three equal marks wins; when every
// line holds both marks nobody can win any more and the game is a draw.
func EvaluateOutcome(board entity.Board) entity.Outcome {
	if line, ok := WinningLine(board); ok {
		if cellAt(board, line[0]) == entity.O {
			return entity.Win(entity.PlayerO)
		}
		return entity.Win(entity.PlayerX)
	}

	for _, line := range Lines {
		if !isMixedLine(board, line) {
			return entity.Outcome{}
		}
	}

	return entity.Draw()
}

// WinningLine returns the first line filled with a single mark.
func WinningLine(board entity.Board) (Line, bool) {
	for _, line := range Lines {
		if isWinningLine(board, line) {
			return line, true
		}
	}

	return Line{}, false
}

func isWinningLine(board entity.Board, line Line) bool {
	a, b, c := cellAt(board, line[0]), cellAt(board, line[1]), cellAt(board, line[2])
	return a != entity.Empty && a == b && b == c
}

func isMixedLine(board entity.Board, line Line) bool {
	var hasX, hasO bool
	for _, coord := range line {
		switch cellAt(board, coord) {
		case entity.X:
			hasX = true
		case entity.O:
			hasO = true
		}
	}

	return hasX && hasO
}

func cellAt(board entity.Board, coord entity.Coord) entity.Cell {
	return board[coord.Row][coord.Col]
}
