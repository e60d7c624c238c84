package application

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/config"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory storage", func(t *testing.T) {
		conf := &config.Config{Storage: config.StorageMemory, SessionTTL: time.Hour}

		repo, closeRepo, err := newSessionRepository(ctx, conf)
		require.NoError(t, err)
		defer func() { require.NoError(t, closeRepo()) }()

		session := entity.NewSession("s1", time.Now())
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		got, err := repo.GetByID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", got.ID)
	})

	t.Run("Redis without host", func(t *testing.T) {
		conf := &config.Config{Storage: config.StorageRedis}

		_, _, err := newSessionRepository(ctx, conf)

		require.ErrorIs(t, err, ErrAddrNotFound)
	})

	t.Run("Unsupported storage", func(t *testing.T) {
		conf := &config.Config{Storage: "sqlite"}

		_, _, err := newSessionRepository(ctx, conf)

		require.ErrorIs(t, err, apperror.ErrUnsupportedStore)
		assert.Contains(t, err.Error(), `"sqlite"`)
	})
}
