package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell coordinates")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrUnsupportedStore = errors.New("unsupported storage")
	ErrNotConnected     = errors.New("connect to a session first")
	ErrUnknownAction    = errors.New("unknown action")
)
