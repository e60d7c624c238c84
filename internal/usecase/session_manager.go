package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// MoveResult is the session after a move attempt. Rejection is empty when the move was played.
type MoveResult struct {
	Session   *entity.Session
	Rejection string
}

// Accepted reports whether the move changed the game.
func (that MoveResult) Accepted() bool {
	return that.Rejection == ""
}

// SessionManager owns the game of every session and applies one transition at a time.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo) *SessionManager {
	return &SessionManager{
		logger:      logger,
		sessionRepo: sessionRepo,

		now:   time.Now,
		newID: pkg.GenerateSessionID,
	}
}

// StartSession creates a session holding a fresh game.
func (that *SessionManager) StartSession(ctx context.Context) (*entity.Session, error) {
	return that.startSession(ctx, that.newID())
}

func (that *SessionManager) startSession(ctx context.Context, id string) (*entity.Session, error) {
	log := that.logger.With("method", "startSession")

	session := entity.NewSession(id, that.now())
	session.State = tictactoe.Initial()

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("session started", "sessionID", session.ID)

	return session, nil
}

// GetSession loads an existing session.
func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// GetOrStartSession resumes the session with the given id or starts a new one when id is
// empty or unknown. An expired session keeps its id so that clients holding it can go on.
func (that *SessionManager) GetOrStartSession(ctx context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return that.StartSession(ctx)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.GetSession(ctx, id)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.logger.Debug("session not found, starting a new one", "method", "GetOrStartSession", "sessionID", id)

		if pkg.IsSessionID(id) {
			return that.startSession(ctx, id)
		}
		return that.StartSession(ctx)
	}

	if err != nil {
		return nil, err
	}

	return session, nil
}

// MakeMove plays the current player's mark at (row, col). An illegal move is not an error:
// the session comes back unchanged with the reason in MoveResult.Rejection.
func (that *SessionManager) MakeMove(ctx context.Context, id string, row, col int) (MoveResult, error) {
	log := that.logger.With("method", "MakeMove", "sessionID", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.GetSession(ctx, id)
	if err != nil {
		return MoveResult{}, err
	}

	if err = tictactoe.Validate(session.State, row, col); err != nil {
		log.Debug("move rejected", "row", row, "col", col, "reason", err)
		return MoveResult{Session: session, Rejection: err.Error()}, nil
	}

	session.State = tictactoe.ApplyMove(session.State, row, col)
	session.UpdatedAt = that.now()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return MoveResult{}, fmt.Errorf("failed to update session: %w", err)
	}

	if session.State.IsFinished() {
		log.Info("game finished", "outcome", session.State.Outcome.Message())
	}

	return MoveResult{Session: session}, nil
}

// ResetSession replaces the session's game with a fresh one.
func (that *SessionManager) ResetSession(ctx context.Context, id string) (*entity.Session, error) {
	log := that.logger.With("method", "ResetSession", "sessionID", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.State = tictactoe.Reset(session.State)
	session.UpdatedAt = that.now()

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	log.Info("game reset")

	return session, nil
}

// EndSession drops the session and its game.
func (that *SessionManager) EndSession(ctx context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "method", "EndSession", "sessionID", id)

	return nil
}
