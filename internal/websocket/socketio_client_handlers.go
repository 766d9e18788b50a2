package websocket

import (
	"context"

	sessionruntime "github.com/ezekaj/learning-sol-sub000/internal/session/runtime"
	"github.com/ezekaj/learning-sol-sub000/internal/websocket/handlers"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

func (s *SocketIOServer) registerClientHandlers(client *socket.Socket, deps handlers.Deps, socketID string) {
	// Authenticate event - bind a verified identity to this socket
	client.On("authenticate", func(data ...any) {
		raw, _ := getFirstAnyWithAck(data)

		var req protocolwire.AuthenticateEvent
		if err := decodeAny(raw, &req); err != nil {
			logger.Warnf("Authenticate decode error: %v (type=%T)", err, raw)
			client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{
				Message: "invalid authentication payload",
			})
			return
		}

		sd := s.getSocketData(socketID)
		s.authenticateSocket(context.Background(), client, sd, deps, req)
	})

	// Join event - enter a session after the registry admits the user
	client.On("join_session", func(data ...any) {
		sd := s.getSocketData(socketID)
		raw, _ := getFirstAnyWithAck(data)

		var req protocolwire.JoinSessionEvent
		if err := decodeAny(raw, &req); err != nil {
			logger.Warnf("join_session decode error: %v (type=%T)", err, raw)
			return
		}

		auth := handlers.NewAuthContext(sd.UserID(), sd.SessionID(), socketID)
		instr, errPayload := handlers.JoinIngest(auth, req)
		if errPayload != nil {
			client.Emit("error", *errPayload)
			return
		}

		// Switching sessions leaves the previous one first.
		if prev := sd.SessionID(); prev != "" && prev != instr.SessionID() {
			s.sessions.EnqueueTerminate(instr.UserID(), prev, socketID, sessionruntime.TriggerLeave)
		}
		s.sessions.EnqueueJoin(context.Background(), instr.UserID(), instr.SessionID(), instr.SocketID())
	})

	// Relay events (decode -> ingest guards -> enqueue onto the session loop)
	onSessionEvent(s, client, "code_change", handlers.CodeIngest, func(instr *handlers.CodeInstruction) {
		s.sessions.EnqueueCode(instr.UserID(), instr.SessionID(), instr.SocketID(), instr.Code(), instr.Change())
	})
	onSessionEvent(s, client, "cursor_update", handlers.CursorIngest, func(instr *handlers.CursorInstruction) {
		s.sessions.EnqueueCursor(instr.UserID(), instr.SessionID(), instr.SocketID(), instr.Cursor())
	})
	onSessionEvent(s, client, "selection_update", handlers.SelectionIngest, func(instr *handlers.SelectionInstruction) {
		s.sessions.EnqueueSelection(instr.UserID(), instr.SessionID(), instr.SocketID(), instr.Selection())
	})
	onSessionEvent(s, client, "send_message", handlers.MessageIngest, func(instr *handlers.MessageInstruction) {
		s.sessions.EnqueueChat(context.Background(), instr.UserID(), instr.SessionID(), instr.SocketID(), instr.Content(), instr.Kind())
	})

	// Leave event - exit the bound session but keep the connection
	client.On("leave_session", func(data ...any) {
		sd := s.getSocketData(socketID)

		auth := handlers.NewAuthContext(sd.UserID(), sd.SessionID(), socketID)
		instr, errPayload := handlers.LeaveIngest(auth)
		if errPayload != nil {
			client.Emit("error", *errPayload)
			return
		}
		s.sessions.EnqueueTerminate(instr.UserID(), instr.SessionID(), instr.SocketID(), sessionruntime.TriggerLeave)
	})

	// Disconnection handler
	client.On("disconnect", func(data ...any) {
		sd := s.getSocketData(socketID)
		reason := ""
		if len(data) > 0 {
			if r, ok := data[0].(string); ok {
				reason = r
			}
		}
		logger.Infof("User disconnected: %s (socket %s, reason: %s)", sd.UserID(), socketID, reason)

		if userID, sessionID := sd.UserID(), sd.SessionID(); userID != "" && sessionID != "" {
			s.sessions.EnqueueTerminate(userID, sessionID, socketID, sessionruntime.TriggerDisconnect)
		}
		s.socketData.Delete(socketID)
	})
}
