package websocket

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ezekaj/learning-sol-sub000/internal/crypto"
	"github.com/ezekaj/learning-sol-sub000/internal/models"
	sessionruntime "github.com/ezekaj/learning-sol-sub000/internal/session/runtime"
	"github.com/ezekaj/learning-sol-sub000/internal/websocket/handlers"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	"github.com/gin-gonic/gin"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"
)

// SocketIOServer wraps the Socket.IO server for the collaboration gateway.
type SocketIOServer struct {
	db         *sql.DB
	jwtManager *crypto.JWTManager
	server     *socket.Server
	socketData sync.Map // Maps socket ID to connection state
	sessions   *sessionruntime.Manager
	stream     *StreamServer
}

// NewSocketIOServer creates a new Socket.IO server wired to the session
// runtime.
func NewSocketIOServer(db *sql.DB, jwtManager *crypto.JWTManager) *SocketIOServer {
	opts := socket.DefaultServerOptions()

	opts.SetCors(&sockettypes.Cors{
		Origin:      "*",
		Credentials: false,
	})

	// SocketIOPingInterval defines how frequently the server pings clients to
	// detect stale/disconnected sockets.
	//
	// This influences how quickly a closed editor tab turns into a user_left
	// broadcast for the remaining participants.
	const SocketIOPingInterval = 5 * time.Second

	// SocketIOPingTimeout defines how long the server waits before considering
	// a socket dead (no pong received).
	const SocketIOPingTimeout = 15 * time.Second

	opts.SetPingTimeout(SocketIOPingTimeout)
	opts.SetPingInterval(SocketIOPingInterval)

	opts.SetPath("/v1/collab")

	server := socket.NewServer(nil, opts)

	s := &SocketIOServer{
		db:         db,
		jwtManager: jwtManager,
		server:     server,
		socketData: sync.Map{},
	}
	s.sessions = sessionruntime.NewManager(&sessionruntime.SQLStore{
		Queries: models.New(db),
	}, s)

	s.setupHandlers()

	return s
}

// AttachStream mirrors session broadcasts onto a read-only observer stream.
// Call before the server starts accepting connections.
func (s *SocketIOServer) AttachStream(stream *StreamServer) {
	s.stream = stream
}

// Sessions exposes the session runtime for the HTTP surface.
func (s *SocketIOServer) Sessions() *sessionruntime.Manager {
	return s.sessions
}

// SocketData stores connection state for each socket. The identity is set by
// the authenticate event and the session binding by the runtime goroutine, so
// field access goes through the mutex.
type SocketData struct {
	mu        sync.Mutex
	userID    string
	sessionID string
	sock      *socket.Socket
}

// UserID returns the authenticated user id, or "" before authentication.
func (sd *SocketData) UserID() string {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.userID
}

// SessionID returns the bound session id, or "" when not in a session.
func (sd *SocketData) SessionID() string {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.sessionID
}

func (sd *SocketData) setUserID(id string) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.userID = id
}

func (sd *SocketData) setSessionID(id string) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.sessionID = id
}

// clearSessionIf drops the session binding only while it still points at
// sessionID. A socket that already rebound to another session keeps the
// newer binding.
func (sd *SocketData) clearSessionIf(sessionID string) bool {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	if sd.sessionID != sessionID {
		return false
	}
	sd.sessionID = ""
	return true
}

// setupHandlers configures Socket.IO event handlers
func (s *SocketIOServer) setupHandlers() {
	queries := models.New(s.db)
	handlerDeps := handlers.NewDeps(queries, time.Now)

	s.server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.handleConnection(client, handlerDeps)
	})
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func getFirstAnyWithAck(data []any) (any, func(...any)) {
	var ack func(...any)
	if len(data) == 0 {
		return nil, nil
	}
	if cb, ok := data[len(data)-1].(func(...any)); ok {
		ack = cb
		data = data[:len(data)-1]
	} else if cb, ok := data[len(data)-1].(socket.Ack); ok {
		ack = func(args ...any) {
			cb(args, nil)
		}
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return nil, ack
	}
	return data[0], ack
}

// EmitToSession sends an event to every socket bound to the session, except
// skipSocketID when non-empty. Broadcasts are mirrored to attached observer
// streams.
func (s *SocketIOServer) EmitToSession(sessionID, event string, payload any, skipSocketID string) {
	s.socketData.Range(func(key, value any) bool {
		sd, ok := value.(*SocketData)
		if !ok {
			return true
		}

		if skipSocketID != "" && key == skipSocketID {
			return true
		}

		if sd.sock == nil || sd.SessionID() != sessionID {
			return true
		}

		logger.Tracef("Emitting %s to socket %v (session %s)", event, key, sessionID)
		sd.sock.Emit(event, payload)
		return true
	})

	if s.stream != nil {
		s.stream.BroadcastToSession(sessionID, event, payload)
	}
}

// EmitToSocket sends an event to one socket. Used for join acknowledgements
// and sender-only errors.
func (s *SocketIOServer) EmitToSocket(socketID, event string, payload any) {
	if data, ok := s.socketData.Load(socketID); ok {
		if sd, ok := data.(*SocketData); ok && sd.sock != nil {
			sd.sock.Emit(event, payload)
		}
	}
}

// BindSession records the socket's session membership after a successful
// join.
func (s *SocketIOServer) BindSession(socketID, sessionID string) {
	if data, ok := s.socketData.Load(socketID); ok {
		if sd, ok := data.(*SocketData); ok {
			sd.setSessionID(sessionID)
		}
	}
}

// ClearSession drops the socket's session membership, unless the socket has
// already been rebound to a different session.
func (s *SocketIOServer) ClearSession(socketID, sessionID string) {
	if data, ok := s.socketData.Load(socketID); ok {
		if sd, ok := data.(*SocketData); ok {
			sd.clearSessionIf(sessionID)
		}
	}
}

// getSocketData retrieves socket state by socket ID
func (s *SocketIOServer) getSocketData(socketID string) *SocketData {
	if data, ok := s.socketData.Load(socketID); ok {
		if sd, ok := data.(*SocketData); ok {
			return sd
		}
	}
	return &SocketData{} // Return empty struct if not found
}

// HandleSocketIO creates a Gin handler for Socket.IO
func (s *SocketIOServer) HandleSocketIO() gin.HandlerFunc {
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "false")

		if c.Request.Method == "OPTIONS" {
			c.Status(http.StatusOK)
			return
		}

		logger.Tracef("Socket.IO request: %s %s", c.Request.Method, c.Request.URL.Path)

		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server
func (s *SocketIOServer) Close() error {
	s.server.Close(nil)
	return nil
}
