package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

const writeWait = 10 * time.Second

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SessionInfo struct {
	ID string `json:"id"`
}

// Payload is the body of every message in both directions. Requests carry Session and Cell,
// replies carry Session and View or Error.
type Payload struct {
	Session  *SessionInfo    `json:"session,omitempty"`
	Cell     *entity.Coord   `json:"cell,omitempty"`
	View     *tictactoe.View `json:"view,omitempty"`
	Status   string          `json:"status,omitempty"`
	Rejected string          `json:"rejected,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func sessionPayload(session *entity.Session) Payload {
	view := tictactoe.Render(session.State)

	return Payload{
		Session: &SessionInfo{ID: session.ID},
		View:    &view,
	}
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

// client is one WebSocket connection. Writes may come from other connections' broadcasts.
type client struct {
	conn     *gorillaws.Conn
	cookieID string

	// guarded by Server.connectionsMutex
	sessionID string

	writeMutex sync.Mutex
}

func (that *client) send(action string, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: data}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendError(action string, err error) error {
	if sendErr := that.send(action, Payload{Error: err.Error()}); sendErr != nil {
		return fmt.Errorf("failed to send error response: %w", sendErr)
	}

	return nil
}
