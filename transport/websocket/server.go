package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
)

const (
	actionConnect   = "connect"
	actionGameMove  = "game:move"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"
)

const (
	sessionCookieName = "user_session"

	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

type sessionUseCase interface {
	GetOrStartSession(ctx context.Context, id string) (*entity.Session, error)
	MakeMove(ctx context.Context, id string, row, col int) (usecase.MoveResult, error)
	ResetSession(ctx context.Context, id string) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error
}

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase
	upgrader gorillaws.Upgrader

	// matches the session store ttl; zero means the cookie lasts for the browser session
	cookieTTL time.Duration

	handlers map[string]func(ctx context.Context, message *Message, c *client) error

	// session id -> connections watching that session
	connections      map[string]map[*client]struct{}
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, sessions sessionUseCase, cookieTTL time.Duration) *Server {
	server := &Server{
		logger:    logger.With("component", "websocket"),
		sessions:  sessions,
		cookieTTL: cookieTTL,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers:    make(map[string]func(context.Context, *Message, *client) error),
		connections: make(map[string]map[*client]struct{}),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameMove] = server.handleGameMove
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Handler - returns the HTTP handler serving WebSocket upgrades on /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server. Open connections are closed when ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	cookieID, header := that.sessionCookie(req)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	c := &client{conn: conn, cookieID: cookieID}
	defer that.unsubscribe(c)

	log.Info("WebSocket connection established")

	that.handleMessages(ctx, c)
}

// handleMessages - processes messages from the client until the connection closes.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, reqBody, err := c.conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.reply(c.sendError("", apperror.ErrInvalidPayload))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			that.reply(c.sendError(message.Action, apperror.ErrUnknownAction))
			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) reply(err error) {
	if err != nil {
		that.logger.Error("failed to reply", "error", err)
	}
}

// sessionCookie - returns the session id from the user_session cookie and, when the cookie is
// missing, the header that sets a new one.
func (that *Server) sessionCookie(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionCookie")

	if cookie, err := req.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    pkg.GenerateSessionID(),
		Path:     "/ws",
		HttpOnly: true,
	}

	if that.cookieTTL > 0 {
		cookie.Expires = time.Now().Add(that.cookieTTL)
		cookie.MaxAge = int(that.cookieTTL.Seconds())
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	log.Debug("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, header
}

func (that *Server) subscribe(c *client, sessionID string) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if c.sessionID != "" && c.sessionID != sessionID {
		that.removeLocked(c)
	}

	watchers, ok := that.connections[sessionID]
	if !ok {
		watchers = make(map[*client]struct{})
		that.connections[sessionID] = watchers
	}

	watchers[c] = struct{}{}
	c.sessionID = sessionID
}

func (that *Server) unsubscribe(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.removeLocked(c)
	c.sessionID = ""
}

func (that *Server) removeLocked(c *client) {
	watchers, ok := that.connections[c.sessionID]
	if !ok {
		return
	}

	delete(watchers, c)
	if len(watchers) == 0 {
		delete(that.connections, c.sessionID)
	}
}

// sessionOf returns the session the connection is bound to, or "" when it is not bound.
func (that *Server) sessionOf(c *client) string {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return c.sessionID
}

// dropSession unbinds every connection watching the session and returns them.
func (that *Server) dropSession(sessionID string) []*client {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	watchers := that.connections[sessionID]
	delete(that.connections, sessionID)

	clients := make([]*client, 0, len(watchers))
	for c := range watchers {
		c.sessionID = ""
		clients = append(clients, c)
	}

	return clients
}

// watchers returns the connections bound to the session. The sender is always included.
func (that *Server) watchers(sender *client, sessionID string) []*client {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	clients := make([]*client, 0, len(that.connections[sessionID])+1)
	for c := range that.connections[sessionID] {
		clients = append(clients, c)
	}

	if _, ok := that.connections[sessionID][sender]; !ok {
		clients = append(clients, sender)
	}

	return clients
}

func (that *Server) broadcast(clients []*client, action string, payload Payload) {
	for _, c := range clients {
		if err := c.send(action, payload); err != nil {
			that.logger.Error("failed to send game update", "action", action, "error", err)
		}
	}
}
