package handlers

import protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"

// JoinInstruction describes a validated join_session operation.
type JoinInstruction struct {
	userID    string
	sessionID string
	socketID  string
}

// UserID returns the joining user id.
func (j JoinInstruction) UserID() string { return j.userID }

// SessionID returns the session id to join.
func (j JoinInstruction) SessionID() string { return j.sessionID }

// SocketID returns the socket the join acknowledgement targets.
func (j JoinInstruction) SocketID() string { return j.socketID }

// JoinIngest validates a "join_session" event and returns an enqueue
// instruction, or an error payload to send back to the caller. A missing
// session id is reported as not_found, the same as an unknown one.
func JoinIngest(auth AuthContext, req protocolwire.JoinSessionEvent) (*JoinInstruction, *protocolwire.ErrorPayload) {
	if auth.UserID() == "" {
		return nil, &protocolwire.ErrorPayload{
			Code:    protocolwire.ErrCodeUnauthenticated,
			Message: "authenticate before joining a session",
		}
	}
	if err := validate.Struct(req); err != nil {
		return nil, &protocolwire.ErrorPayload{
			Code:    protocolwire.ErrCodeNotFound,
			Message: "session not found",
		}
	}
	return &JoinInstruction{
		userID:    auth.UserID(),
		sessionID: req.SessionID,
		socketID:  auth.SocketID(),
	}, nil
}
