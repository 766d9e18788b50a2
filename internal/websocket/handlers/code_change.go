package handlers

import protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"

// CodeInstruction describes a validated code_change operation.
type CodeInstruction struct {
	userID    string
	sessionID string
	socketID  string
	code      string
	change    any
}

// UserID returns the editing user id.
func (c CodeInstruction) UserID() string { return c.userID }

// SessionID returns the session whose buffer changed.
func (c CodeInstruction) SessionID() string { return c.sessionID }

// SocketID returns the socket to skip when rebroadcasting.
func (c CodeInstruction) SocketID() string { return c.socketID }

// Code returns the full replacement buffer.
func (c CodeInstruction) Code() string { return c.code }

// Change returns the optional editor delta, passed through opaquely.
func (c CodeInstruction) Change() any { return c.change }

// CodeIngest validates a "code_change" event. An empty code string is a legal
// buffer state, so the payload carries no required fields.
func CodeIngest(auth AuthContext, req protocolwire.CodeChangeEvent) (*CodeInstruction, *protocolwire.ErrorPayload) {
	if errPayload := requireSession(auth, "send code changes"); errPayload != nil {
		return nil, errPayload
	}
	return &CodeInstruction{
		userID:    auth.UserID(),
		sessionID: auth.SessionID(),
		socketID:  auth.SocketID(),
		code:      req.Code,
		change:    req.Change,
	}, nil
}

// requireSession applies the shared authentication and membership guards for
// in-session events. The returned error payload goes to the caller only.
func requireSession(auth AuthContext, verb string) *protocolwire.ErrorPayload {
	if auth.UserID() == "" {
		return &protocolwire.ErrorPayload{
			Code:    protocolwire.ErrCodeUnauthenticated,
			Message: "authenticate to " + verb,
		}
	}
	if auth.SessionID() == "" {
		return &protocolwire.ErrorPayload{
			Code:    protocolwire.ErrCodeNotInSession,
			Message: "join a session to " + verb,
		}
	}
	return nil
}
