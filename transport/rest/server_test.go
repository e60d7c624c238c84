package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessions struct {
	mock.Mock
}

func (that *mockSessions) StartSession(ctx context.Context) (*entity.Session, error) {
	args := that.Called(ctx)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessions) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessions) MakeMove(ctx context.Context, id string, row, col int) (usecase.MoveResult, error) {
	args := that.Called(ctx, id, row, col)
	result, _ := args.Get(0).(usecase.MoveResult)
	return result, args.Error(1)
}

func (that *mockSessions) ResetSession(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessions) EndSession(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestServer(t *testing.T) (*httptest.Server, *mockSessions) {
	t.Helper()

	sessions := &mockSessions{}
	t.Cleanup(func() { sessions.AssertExpectations(t) })

	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), sessions)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)

	return ts, sessions
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func decodeSession(t *testing.T, data []byte) SessionResponse {
	t.Helper()

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(data, &resp))

	return resp
}

func TestPing(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/ping", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestStartSession(t *testing.T) {
	// Given: the use case starts session s1
	ts, sessions := newTestServer(t)
	sessions.On("StartSession", mock.Anything).Return(entity.NewSession("s1", time.Now()), nil).Once()

	// When: a client creates a session
	resp, body := doRequest(t, http.MethodPost, ts.URL+"/api/v1/sessions", "")

	// Then: the fresh board is returned without a reset control
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decodeSession(t, body)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, tictactoe.Render(tictactoe.Initial()), session.View)
	assert.False(t, session.View.CanReset)
}

func TestGetSession(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		ts, sessions := newTestServer(t)
		session := entity.NewSession("s1", time.Now())
		session.State = tictactoe.ApplyMove(session.State, 1, 1)
		sessions.On("GetSession", mock.Anything, "s1").Return(session, nil).Once()

		resp, body := doRequest(t, http.MethodGet, ts.URL+"/api/v1/sessions/s1", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		view := decodeSession(t, body).View
		assert.Equal(t, "x", view.Cells[1][1])
		assert.Equal(t, "o", view.CurrentPlayer)
		assert.True(t, view.CanReset)
	})

	t.Run("Not found", func(t *testing.T) {
		ts, sessions := newTestServer(t)
		sessions.On("GetSession", mock.Anything, "nope").Return(nil, apperror.ErrSessionNotFound).Once()

		resp, body := doRequest(t, http.MethodGet, ts.URL+"/api/v1/sessions/nope", "")

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":"session not found"}`, string(body))
	})

	t.Run("Internal error", func(t *testing.T) {
		ts, sessions := newTestServer(t)
		sessions.On("GetSession", mock.Anything, "s1").Return(nil, errors.New("redis down")).Once()

		resp, _ := doRequest(t, http.MethodGet, ts.URL+"/api/v1/sessions/s1", "")

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestMove(t *testing.T) {
	t.Run("Winning move shows the message", func(t *testing.T) {
		// Given: X is one move from winning the top row
		ts, sessions := newTestServer(t)
		state := tictactoe.Initial()
		for _, move := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
			state = tictactoe.ApplyMove(state, move[0], move[1])
		}
		session := entity.NewSession("s1", time.Now())
		session.State = state
		sessions.On("MakeMove", mock.Anything, "s1", 0, 2).Return(usecase.MoveResult{Session: session}, nil).Once()

		// When: the move is posted
		resp, body := doRequest(t, http.MethodPost, ts.URL+"/api/v1/sessions/s1/moves", `{"row":0,"col":2}`)

		// Then: the view announces the winner
		require.Equal(t, http.StatusOK, resp.StatusCode)
		view := decodeSession(t, body).View
		assert.Equal(t, "x wins!", view.Message)
		assert.True(t, view.Finished)
		assert.Len(t, view.WinningLine, 3)
	})

	t.Run("Rejected move reports the reason", func(t *testing.T) {
		ts, sessions := newTestServer(t)
		session := entity.NewSession("s1", time.Now())
		session.State = tictactoe.ApplyMove(session.State, 0, 0)
		sessions.On("MakeMove", mock.Anything, "s1", 0, 0).Return(usecase.MoveResult{
			Session:   session,
			Rejection: apperror.ErrCellOccupied.Error(),
		}, nil).Once()

		resp, body := doRequest(t, http.MethodPost, ts.URL+"/api/v1/sessions/s1/moves", `{"row":0,"col":0}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeSession(t, body)
		assert.Equal(t, "cell is already occupied", got.Rejected)
		assert.Equal(t, "o", got.View.CurrentPlayer)
	})

	t.Run("Malformed body", func(t *testing.T) {
		ts, _ := newTestServer(t)

		for _, body := range []string{`{`, `{"row":1}`, `{"col":1}`} {
			resp, _ := doRequest(t, http.MethodPost, ts.URL+"/api/v1/sessions/s1/moves", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)
		}
	})
}

func TestReset(t *testing.T) {
	ts, sessions := newTestServer(t)
	sessions.On("ResetSession", mock.Anything, "s1").Return(entity.NewSession("s1", time.Now()), nil).Once()

	resp, body := doRequest(t, http.MethodPost, ts.URL+"/api/v1/sessions/s1/reset", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeSession(t, body).View.CanReset)
}

func TestEndSession(t *testing.T) {
	t.Run("Deleted", func(t *testing.T) {
		ts, sessions := newTestServer(t)
		sessions.On("EndSession", mock.Anything, "s1").Return(nil).Once()

		resp, _ := doRequest(t, http.MethodDelete, ts.URL+"/api/v1/sessions/s1", "")

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("Not found", func(t *testing.T) {
		ts, sessions := newTestServer(t)
		sessions.On("EndSession", mock.Anything, "s1").Return(apperror.ErrSessionNotFound).Once()

		resp, _ := doRequest(t, http.MethodDelete, ts.URL+"/api/v1/sessions/s1", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
