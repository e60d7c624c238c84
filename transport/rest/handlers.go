package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

// SessionResponse is the body returned for every session operation.
type SessionResponse struct {
	ID       string         `json:"id"`
	View     tictactoe.View `json:"view"`
	Rejected string         `json:"rejected,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func newSessionResponse(session *entity.Session) SessionResponse {
	return SessionResponse{
		ID:   session.ID,
		View: tictactoe.Render(session.State),
	}
}

func (that *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.StartSession(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, r, apperror.ErrInvalidPayload)
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeError(w, r, apperror.ErrInvalidPayload)
		return
	}

	result, err := that.sessions.MakeMove(r.Context(), chi.URLParam(r, "sessionID"), *req.Row, *req.Col)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	resp := newSessionResponse(result.Session)
	resp.Rejected = result.Rejection

	that.writeJSON(w, http.StatusOK, resp)
}

func (that *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.ResetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (that *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrInvalidPayload):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidPayload.Error()})
	default:
		that.logger.Error("request failed", "path", r.URL.Path, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}
