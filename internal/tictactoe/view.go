package tictactoe

import "github.com/rocketscienceinc/tictactoe/internal/entity"

// View is what a client needs to draw the game.
type View struct {
	Cells         [entity.BoardSize][entity.BoardSize]string `json:"cells"`
	CurrentPlayer string                                     `json:"current_player"`
	Message       string                                     `json:"message,omitempty"`
	Finished      bool                                       `json:"finished"`
	CanReset      bool                                       `json:"can_reset"`
	WinningLine   []entity.Coord                             `json:"winning_line,omitempty"`
}

// Render builds the view of a game. The reset control is offered only once a mark is on the board.
func Render(state entity.GameState) View {
	view := View{
		CurrentPlayer: state.CurrentPlayer.String(),
		Message:       state.Outcome.Message(),
		Finished:      state.IsFinished(),
		CanReset:      !state.Board.IsEmpty(),
	}

	for row := range state.Board {
		for col, cell := range state.Board[row] {
			view.Cells[row][col] = cell.String()
		}
	}

	if line, ok := WinningLine(state.Board); ok && state.Outcome.Kind == entity.OutcomeWin {
		view.WinningLine = line[:]
	}

	return view
}
