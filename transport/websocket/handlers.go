package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

const gameStatusLeave = "leave"

func (that *Server) handleConnect(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return errors.Join(err, c.sendError(msg.Action, apperror.ErrInvalidPayload))
	}

	sessionID := c.cookieID
	if payloadReq.Session != nil && payloadReq.Session.ID != "" {
		sessionID = payloadReq.Session.ID
	}

	session, err := that.sessions.GetOrStartSession(ctx, sessionID)
	if err != nil {
		log.Error("failed to get or start session", "sessionID", sessionID, "error", err)
		return c.sendError(msg.Action, errors.New("failed to start a session"))
	}

	that.subscribe(c, session.ID)

	if err = c.send(msg.Action, sessionPayload(session)); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected to session", "sessionID", session.ID)

	return nil
}

func (that *Server) handleGameMove(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleGameMove")

	sessionID := that.sessionOf(c)
	if sessionID == "" {
		return c.sendError(msg.Action, apperror.ErrNotConnected)
	}

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return errors.Join(err, c.sendError(msg.Action, apperror.ErrInvalidPayload))
	}

	if payloadReq.Cell == nil {
		log.Debug("cell is missing in payload")
		return c.sendError(msg.Action, apperror.ErrInvalidPayload)
	}

	log = log.With("sessionID", sessionID)

	result, err := that.sessions.MakeMove(ctx, sessionID, payloadReq.Cell.Row, payloadReq.Cell.Col)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return c.sendError(msg.Action, apperror.ErrSessionNotFound)
	}

	if err != nil {
		log.Error("failed to make move", "error", err)
		return c.sendError(msg.Action, errors.New("failed to make a move"))
	}

	payloadResp := sessionPayload(result.Session)

	// a rejected move changes nothing, so only the sender hears about it
	if !result.Accepted() {
		payloadResp.Rejected = result.Rejection
		return c.send(msg.Action, payloadResp)
	}

	that.broadcast(that.watchers(c, sessionID), msg.Action, payloadResp)

	log.Info("move played", "row", payloadReq.Cell.Row, "col", payloadReq.Cell.Col)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleGameReset")

	sessionID := that.sessionOf(c)
	if sessionID == "" {
		return c.sendError(msg.Action, apperror.ErrNotConnected)
	}

	session, err := that.sessions.ResetSession(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return c.sendError(msg.Action, apperror.ErrSessionNotFound)
	}

	if err != nil {
		log.Error("failed to reset game", "sessionID", sessionID, "error", err)
		return c.sendError(msg.Action, errors.New("failed to reset the game"))
	}

	that.broadcast(that.watchers(c, session.ID), msg.Action, sessionPayload(session))

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleGameLeave")

	sessionID := that.sessionOf(c)
	if sessionID == "" {
		return c.sendError(msg.Action, apperror.ErrNotConnected)
	}

	err := that.sessions.EndSession(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return c.sendError(msg.Action, apperror.ErrSessionNotFound)
	}

	if err != nil {
		log.Error("failed to end session", "sessionID", sessionID, "error", err)
		return c.sendError(msg.Action, errors.New("failed to leave the game"))
	}

	that.broadcast(that.dropSession(sessionID), msg.Action, Payload{
		Session: &SessionInfo{ID: sessionID},
		Status:  gameStatusLeave,
	})

	log.Info("session left", "sessionID", sessionID)

	return nil
}
