package handlers

import protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"

// LeaveInstruction describes a validated leave_session operation.
type LeaveInstruction struct {
	userID    string
	sessionID string
	socketID  string
}

// UserID returns the leaving user id.
func (l LeaveInstruction) UserID() string { return l.userID }

// SessionID returns the session being left.
func (l LeaveInstruction) SessionID() string { return l.sessionID }

// SocketID returns the socket that requested the leave.
func (l LeaveInstruction) SocketID() string { return l.socketID }

// LeaveIngest validates a "leave_session" event. The payload is empty; the
// target session is the one the socket is bound to.
func LeaveIngest(auth AuthContext) (*LeaveInstruction, *protocolwire.ErrorPayload) {
	if errPayload := requireSession(auth, "leave a session"); errPayload != nil {
		return nil, errPayload
	}
	return &LeaveInstruction{
		userID:    auth.UserID(),
		sessionID: auth.SessionID(),
		socketID:  auth.SocketID(),
	}, nil
}
