package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

type memorySession struct {
	session   entity.Session
	expiresAt time.Time
}

type memSession struct {
	mu        sync.Mutex
	sessions  map[string]memorySession
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// NewMemorySessionRepository keeps sessions in process memory with the same expiry rules as Redis.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memSession{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	that.sweepLocked(now)

	stored := memorySession{session: *session}
	if that.ttl > 0 {
		stored.expiresAt = now.Add(that.ttl)
	}

	that.sessions[session.ID] = stored

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	if that.expired(stored) {
		delete(that.sessions, id)
		return nil, apperror.ErrSessionNotFound
	}

	session := stored.session

	return &session, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.sessions[id]
	if !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	if that.expired(stored) {
		return apperror.ErrSessionNotFound
	}

	return nil
}

// sweepLocked drops expired sessions, at most once per ttl.
func (that *memSession) sweepLocked(now time.Time) {
	if that.ttl <= 0 || now.Before(that.nextSweep) {
		return
	}

	for id, stored := range that.sessions {
		if that.expired(stored) {
			delete(that.sessions, id)
		}
	}

	that.nextSweep = now.Add(that.ttl)
}

func (that *memSession) expired(stored memorySession) bool {
	return !stored.expiresAt.IsZero() && !that.now().Before(stored.expiresAt)
}
