package entity

import (
	"encoding/json"
	"fmt"
)

// OutcomeKind classifies a board.
type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
)

const (
	outcomeNone = "none"
	outcomeWin  = "win"
	outcomeDraw = "draw"

	drawMessage = "Cat's game!"
)

func (that OutcomeKind) String() string {
	switch that {
	case OutcomeWin:
		return outcomeWin
	case OutcomeDraw:
		return outcomeDraw
	default:
		return outcomeNone
	}
}

// Outcome is None while the game goes on, Win with a Winner, or Draw.
// Winner is meaningful only for OutcomeWin.
type Outcome struct {
	Kind   OutcomeKind
	Winner Player
}

func Win(winner Player) Outcome {
	return Outcome{Kind: OutcomeWin, Winner: winner}
}

func Draw() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

// Message is the text shown to the players: "<mark> wins!", "Cat's game!" or nothing.
func (that Outcome) Message() string {
	switch that.Kind {
	case OutcomeWin:
		return that.Winner.String() + " wins!"
	case OutcomeDraw:
		return drawMessage
	default:
		return ""
	}
}

type outcomeJSON struct {
	Kind   string `json:"kind"`
	Winner string `json:"winner,omitempty"`
}

func (that Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Kind: that.Kind.String()}
	if that.Kind == OutcomeWin {
		out.Winner = that.Winner.String()
	}

	return json.Marshal(out)
}

func (that *Outcome) UnmarshalJSON(data []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to unmarshal outcome: %w", err)
	}

	switch in.Kind {
	case outcomeNone, "":
		*that = Outcome{}
	case outcomeDraw:
		*that = Draw()
	case outcomeWin:
		var winner Player
		if err := winner.UnmarshalText([]byte(in.Winner)); err != nil {
			return fmt.Errorf("failed to unmarshal winner: %w", err)
		}
		*that = Win(winner)
	default:
		return fmt.Errorf("%w: outcome %q", ErrUnknownMark, in.Kind)
	}

	return nil
}
