package entity

import (
	"errors"
	"fmt"
)

// BoardSize is the number of rows and columns of the board.
const BoardSize = 3

var ErrUnknownMark = errors.New("unknown mark")

// Cell is the content of one board square. The zero value is Empty.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

const (
	markEmpty = ""
	markX     = "x"
	markO     = "o"
)

func (that Cell) String() string {
	switch that {
	case X:
		return markX
	case O:
		return markO
	default:
		return markEmpty
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case markEmpty:
		*that = Empty
	case markX:
		*that = X
	case markO:
		*that = O
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMark, text)
	}

	return nil
}

// Player is the side to move. The zero value is PlayerX, who always moves first.
type Player uint8

const (
	PlayerX Player = iota
	PlayerO
)

// Mark returns the cell value the player writes on the board.
func (that Player) Mark() Cell {
	if that == PlayerO {
		return O
	}
	return X
}

// Next returns the opponent.
func (that Player) Next() Player {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Player) String() string {
	return that.Mark().String()
}

func (that Player) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case markX:
		*that = PlayerX
	case markO:
		*that = PlayerO
	default:
		return fmt.Errorf("%w: player %q", ErrUnknownMark, text)
	}

	return nil
}

// Board is the fixed 3x3 grid addressed as Board[row][col].
type Board [BoardSize][BoardSize]Cell

// IsEmpty reports whether no mark has been placed yet.
func (that Board) IsEmpty() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell != Empty {
				return false
			}
		}
	}
	return true
}

// Count returns how many cells hold the given value.
func (that Board) Count(cell Cell) int {
	count := 0
	for _, row := range that {
		for _, c := range row {
			if c == cell {
				count++
			}
		}
	}
	return count
}

// Coord addresses one cell of the board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InRange reports whether the coordinate lies on the board.
func (that Coord) InRange() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// GameState is the whole state of one game. Its zero value is the initial state:
// an empty board, X to move and no outcome.
type GameState struct {
	Board         Board   `json:"board"`
	CurrentPlayer Player  `json:"current_player"`
	Outcome       Outcome `json:"outcome"`
}

// IsFinished reports whether the game has been won or drawn.
func (that GameState) IsFinished() bool {
	return that.Outcome.Kind != OutcomeNone
}
