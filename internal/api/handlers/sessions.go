package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/ezekaj/learning-sol-sub000/internal/api/middleware"
	"github.com/ezekaj/learning-sol-sub000/internal/crypto"
	"github.com/ezekaj/learning-sol-sub000/internal/models"
	sessionruntime "github.com/ezekaj/learning-sol-sub000/internal/session/runtime"
	"github.com/ezekaj/learning-sol-sub000/internal/websocket"
	"github.com/ezekaj/learning-sol-sub000/pkg/types"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type SessionHandler struct {
	db      *sql.DB
	queries *models.Queries
	gateway *websocket.SocketIOServer
}

func NewSessionHandler(db *sql.DB, gateway *websocket.SocketIOServer) *SessionHandler {
	return &SessionHandler{
		db:      db,
		queries: models.New(db),
		gateway: gateway,
	}
}

// CreateSession handles POST /v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req protocolwire.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = "pair"
	}
	language := req.Language
	if language == "" {
		language = "solidity"
	}

	ctx := c.Request.Context()
	if _, err := h.ensureUser(ctx, userID, callerClaims(c)); err != nil {
		logger.Errorf("CreateSession: ensureUser failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	// The session row and the creator's owner membership commit together.
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}
	defer tx.Rollback()

	qtx := h.queries.WithTx(tx)
	now := time.Now()
	session, err := qtx.CreateSession(ctx, models.CreateSessionParams{
		ID:        types.NewID(),
		Title:     req.Title,
		Kind:      kind,
		Language:  language,
		Code:      req.Code,
		CreatedBy: userID,
		CreatedAt: now,
	})
	if err != nil {
		logger.Errorf("CreateSession: CreateSession failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create session"})
		return
	}
	if err := qtx.AddSessionParticipant(ctx, models.AddSessionParticipantParams{
		SessionID: session.ID,
		UserID:    userID,
		Role:      "owner",
		AddedAt:   now,
	}); err != nil {
		logger.Errorf("CreateSession: AddSessionParticipant failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create session"})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, protocolwire.CreateSessionResponse{Session: toSessionInfo(session)})
}

// ListSessions handles GET /v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	// Get limit parameter
	limit := int64(50)
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.ParseInt(limitStr, 10, 64); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	sessions, err := h.queries.ListSessionsForUser(c.Request.Context(), models.ListSessionsForUserParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		logger.Errorf("ListSessions: ListSessionsForUser failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, protocolwire.ListSessionsResponse{
		Sessions: lo.Map(sessions, func(session models.Session, _ int) protocolwire.SessionInfo {
			return toSessionInfo(session)
		}),
	})
}

// GetSession handles GET /v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	sessionID := c.Param("id")

	session, err := h.queries.GetSessionByID(c.Request.Context(), sessionID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "session not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	participants, err := h.queries.ListSessionParticipants(c.Request.Context(), sessionID)
	if err != nil {
		logger.Errorf("GetSession: ListSessionParticipants failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	if !isParticipant(participants, userID) {
		c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "not a session participant"})
		return
	}

	c.JSON(http.StatusOK, protocolwire.GetSessionResponse{
		Session: toSessionInfo(session),
		Participants: lo.Map(participants, func(p models.SessionParticipantProfile, _ int) protocolwire.Participant {
			return toParticipant(p)
		}),
	})
}

// GetSessionMessages handles GET /v1/sessions/:id/messages
func (h *SessionHandler) GetSessionMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	sessionID := c.Param("id")

	ctx := c.Request.Context()
	if _, err := h.queries.GetSessionByID(ctx, sessionID); err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "session not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	participants, err := h.queries.ListSessionParticipants(ctx, sessionID)
	if err != nil {
		logger.Errorf("GetSessionMessages: ListSessionParticipants failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}
	if !isParticipant(participants, userID) {
		c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "not a session participant"})
		return
	}

	limit := int64(100)
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.ParseInt(limitStr, 10, 64); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}
	offset := int64(0)
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.ParseInt(offsetStr, 10, 64); err == nil && o >= 0 {
			offset = o
		}
	}

	messages, err := h.queries.ListChatMessages(ctx, models.ListChatMessagesParams{
		SessionID: sessionID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		logger.Errorf("GetSessionMessages: ListChatMessages failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to list messages"})
		return
	}

	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.UserID] = p.Name
	}

	c.JSON(http.StatusOK, protocolwire.SessionMessagesResponse{
		Messages: lo.Map(messages, func(msg models.ChatMessage, _ int) protocolwire.ChatMessage {
			author := names[msg.UserID]
			if author == "" {
				author = msg.UserID
			}
			return protocolwire.ChatMessage{
				ID:        msg.ID,
				SessionID: msg.SessionID,
				SenderID:  msg.UserID,
				Author:    author,
				Content:   msg.Content,
				Kind:      msg.Kind,
				Timestamp: msg.CreatedAtMs,
			}
		}),
	})
}

// AddParticipant handles POST /v1/sessions/:id/participants
func (h *SessionHandler) AddParticipant(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	sessionID := c.Param("id")

	var req protocolwire.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	session, err := h.queries.GetSessionByID(ctx, sessionID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "session not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	if session.CreatedBy != userID {
		c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "only the session owner can add participants"})
		return
	}

	role := req.Role
	if role == "" {
		role = "editor"
	}

	// The added user may never have connected; make sure the row exists.
	target, err := h.ensureUser(ctx, req.UserID, nil)
	if err != nil {
		logger.Errorf("AddParticipant: ensureUser failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "database error"})
		return
	}

	if err := h.queries.AddSessionParticipant(ctx, models.AddSessionParticipantParams{
		SessionID: sessionID,
		UserID:    target.ID,
		Role:      role,
		AddedAt:   time.Now(),
	}); err != nil {
		logger.Errorf("AddParticipant: AddSessionParticipant failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to add participant"})
		return
	}

	// A live runtime loaded its authorized list at first join; push the new
	// member so the grant applies without a restart.
	if h.gateway != nil {
		h.gateway.Sessions().AuthorizeParticipant(sessionID, sessionruntime.ParticipantProfile{
			UserID:    target.ID,
			Name:      target.Name,
			AvatarURL: target.AvatarURL.String,
			Role:      role,
		})
	}

	c.JSON(http.StatusOK, protocolwire.AddParticipantResponse{Participant: protocolwire.Participant{
		ID:        target.ID,
		Name:      target.Name,
		AvatarURL: target.AvatarURL.String,
		Role:      role,
	}})
}

// ensureUser finds or creates the user row for an authenticated subject.
func (h *SessionHandler) ensureUser(ctx context.Context, userID string, claims *crypto.TokenClaims) (models.User, error) {
	user, err := h.queries.GetUserByID(ctx, userID)
	if err == sql.ErrNoRows {
		name := ""
		avatarURL := ""
		if claims != nil {
			name = claims.Name()
			avatarURL = claims.AvatarURL()
		}
		if name == "" {
			name = userID
		}
		return h.queries.CreateUser(ctx, models.CreateUserParams{
			ID:        userID,
			Name:      name,
			AvatarURL: sql.NullString{String: avatarURL, Valid: avatarURL != ""},
			Role:      "member",
			CreatedAt: time.Now(),
		})
	}
	return user, err
}

func callerClaims(c *gin.Context) *crypto.TokenClaims {
	if value, exists := c.Get("claims"); exists {
		if claims, ok := value.(*crypto.TokenClaims); ok {
			return claims
		}
	}
	return nil
}

func isParticipant(participants []models.SessionParticipantProfile, userID string) bool {
	return lo.ContainsBy(participants, func(p models.SessionParticipantProfile) bool {
		return p.UserID == userID
	})
}

func toSessionInfo(session models.Session) protocolwire.SessionInfo {
	return protocolwire.SessionInfo{
		ID:        session.ID,
		Title:     session.Title,
		Kind:      session.Kind,
		Language:  session.Language,
		Code:      session.Code,
		CreatedBy: session.CreatedBy,
		CreatedAt: session.CreatedAt.UnixMilli(),
		UpdatedAt: session.UpdatedAt.UnixMilli(),
	}
}

func toParticipant(p models.SessionParticipantProfile) protocolwire.Participant {
	return protocolwire.Participant{
		ID:        p.UserID,
		Name:      p.Name,
		AvatarURL: p.AvatarURL.String,
		Role:      p.Role,
	}
}
