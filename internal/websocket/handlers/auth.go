package handlers

// AuthContext carries the caller's socket identity into handler functions. It
// intentionally excludes transport-specific types.
type AuthContext struct {
	userID    string
	sessionID string
	socketID  string
}

// NewAuthContext constructs an AuthContext for a single socket event. userID
// is empty until the socket authenticates; sessionID is empty until it joins
// a session.
func NewAuthContext(userID, sessionID, socketID string) AuthContext {
	return AuthContext{
		userID:    userID,
		sessionID: sessionID,
		socketID:  socketID,
	}
}

// UserID returns the authenticated user id, or "" for an anonymous socket.
func (a AuthContext) UserID() string {
	return a.userID
}

// SessionID returns the session the socket is currently bound to, or "".
func (a AuthContext) SessionID() string {
	return a.sessionID
}

// SocketID returns the caller socket id.
func (a AuthContext) SocketID() string {
	return a.socketID
}
