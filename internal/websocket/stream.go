package websocket

import (
	"database/sql"
	"net/http"
	"sync"

	"github.com/ezekaj/learning-sol-sub000/internal/models"
	"github.com/ezekaj/learning-sol-sub000/pkg/types"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; auth happens before the upgrade
	},
}

// StreamServer is a plain WebSocket fan-out (not Socket.IO) for read-only
// session observers. Observers see the same broadcasts as participants but
// cannot send anything.
type StreamServer struct {
	queries *models.Queries
	mu      sync.RWMutex
	clients map[*websocket.Conn]*ObserverInfo
}

// ObserverInfo stores information about a connected observer
type ObserverInfo struct {
	UserID    string
	SessionID string
	Conn      *websocket.Conn
}

// StreamFrame is a single event on the observer stream
type StreamFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewStreamServer creates a new observer stream server
func NewStreamServer(db *sql.DB) *StreamServer {
	return &StreamServer{
		queries: models.New(db),
		clients: make(map[*websocket.Conn]*ObserverInfo),
	}
}

// HandleStream upgrades an authorized participant to an observer of one
// session. The first frame is a stream_connected snapshot; afterwards the
// connection carries the session's broadcast events.
func (s *StreamServer) HandleStream(c *gin.Context) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "authentication required"})
		return
	}
	userID := userIDValue.(string)
	sessionID := c.Param("id")

	ctx := c.Request.Context()
	session, err := s.queries.GetSessionByID(ctx, sessionID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "session not found"})
		return
	}
	if err != nil {
		logger.Errorf("Stream: GetSessionByID failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	isParticipant, err := s.queries.IsSessionParticipant(ctx, models.IsSessionParticipantParams{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		logger.Errorf("Stream: IsSessionParticipant failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}
	if !isParticipant {
		c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "not a session participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("Stream upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// The snapshot frame goes out before the observer is registered, so it
	// never interleaves with a broadcast write.
	snapshot := StreamFrame{Type: "stream_connected", Data: protocolwire.SessionInfo{
		ID:        session.ID,
		Title:     session.Title,
		Kind:      session.Kind,
		Language:  session.Language,
		Code:      session.Code,
		CreatedBy: session.CreatedBy,
		CreatedAt: session.CreatedAt.UnixMilli(),
		UpdatedAt: session.UpdatedAt.UnixMilli(),
	}}
	if err := conn.WriteJSON(snapshot); err != nil {
		logger.Warnf("Stream write error: %v", err)
		return
	}

	info := &ObserverInfo{UserID: userID, SessionID: sessionID, Conn: conn}
	s.mu.Lock()
	s.clients[conn] = info
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	logger.Infof("Stream observer connected: %s (session %s)", userID, sessionID)

	// Observers never send; the read loop just waits for the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warnf("Stream read error: %v", err)
			}
			break
		}
	}

	logger.Infof("Stream observer disconnected: %s (session %s)", userID, sessionID)
}

// BroadcastToSession mirrors one session event to its observers.
func (s *StreamServer) BroadcastToSession(sessionID, event string, payload any) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn, info := range s.clients {
		if info.SessionID != sessionID {
			continue
		}
		if err := conn.WriteJSON(StreamFrame{Type: event, Data: payload}); err != nil {
			logger.Warnf("Stream write failed for observer %s: %v", info.UserID, err)
		}
	}
}
