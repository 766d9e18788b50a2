package websocket

import (
	"context"

	sessionruntime "github.com/ezekaj/learning-sol-sub000/internal/session/runtime"
	"github.com/ezekaj/learning-sol-sub000/internal/websocket/handlers"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

func (s *SocketIOServer) handleConnection(client *socket.Socket, deps handlers.Deps) {
	socketID := string(client.Id())

	logger.Infof("Socket.IO connection (socket ID: %s)", socketID)

	socketData := &SocketData{sock: client}
	s.socketData.Store(socketID, socketData)

	// A token in the handshake auth authenticates the socket up front. Missing
	// or bad handshake credentials keep the connection open; identity can
	// still arrive later through the authenticate event.
	authMap := client.Handshake().Auth
	if len(authMap) != 0 {
		var authPayload protocolwire.AuthenticateEvent
		if err := decodeAny(authMap, &authPayload); err != nil {
			logger.Warnf("Socket.IO invalid handshake auth (socket %s): %v", socketID, err)
			client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{
				Message: "invalid authentication payload",
			})
		} else if authPayload.Token != "" {
			s.authenticateSocket(context.Background(), client, socketData, deps, authPayload)
		}
	}

	s.registerClientHandlers(client, deps, socketID)
}

// authenticateSocket verifies a token and binds the user identity to the
// socket. Failures emit authentication_failed to the caller only; the
// connection always stays open.
func (s *SocketIOServer) authenticateSocket(ctx context.Context, client *socket.Socket, sd *SocketData, deps handlers.Deps, req protocolwire.AuthenticateEvent) {
	socketID := string(client.Id())

	identity, err := handlers.ValidateAuthenticatePayload(req)
	if err != nil {
		logger.Warnf("Socket.IO auth rejected (socket %s): %v", socketID, err)
		client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{Message: err.Error()})
		return
	}

	claims, err := s.jwtManager.VerifyToken(identity.Token)
	if err != nil {
		logger.Warnf("Socket.IO invalid token (socket %s): %v", socketID, err)
		client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{Message: "invalid authentication token"})
		return
	}

	userID := claims.UserID
	if userID == "" {
		logger.Warnf("Socket.IO token without subject (socket %s)", socketID)
		client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{Message: "invalid authentication token"})
		return
	}
	if identity.UserID != "" && identity.UserID != userID {
		logger.Warnf("Socket.IO token subject mismatch (socket %s): claimed %s", socketID, identity.UserID)
		client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{Message: "token does not match the claimed user"})
		return
	}

	user, err := handlers.EnsureUser(ctx, deps, userID, claims.Name(), claims.AvatarURL())
	if err != nil {
		logger.Errorf("Socket.IO user lookup failed (socket %s): %v", socketID, err)
		client.Emit("authentication_failed", protocolwire.AuthenticationFailedPayload{Message: "failed to load user profile"})
		return
	}

	// Re-authenticating as someone else while in a session ends the previous
	// membership first.
	if prevUserID := sd.UserID(); prevUserID != "" && prevUserID != user.ID {
		if sessionID := sd.SessionID(); sessionID != "" {
			s.sessions.EnqueueTerminate(prevUserID, sessionID, socketID, sessionruntime.TriggerLeave)
		}
	}

	sd.setUserID(user.ID)

	logger.Infof("Socket.IO client authenticated (user: %s, socket: %s)", user.ID, socketID)
	client.Emit("authenticated", protocolwire.AuthenticatedPayload{UserID: user.ID})
}
