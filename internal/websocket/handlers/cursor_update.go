package handlers

import protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"

// CursorInstruction describes a validated cursor_update operation.
type CursorInstruction struct {
	userID    string
	sessionID string
	socketID  string
	cursor    protocolwire.CursorState
}

// UserID returns the user whose cursor moved.
func (c CursorInstruction) UserID() string { return c.userID }

// SessionID returns the session the cursor belongs to.
func (c CursorInstruction) SessionID() string { return c.sessionID }

// SocketID returns the socket to skip when rebroadcasting.
func (c CursorInstruction) SocketID() string { return c.socketID }

// Cursor returns the new cursor position.
func (c CursorInstruction) Cursor() protocolwire.CursorState { return c.cursor }

// CursorIngest validates a "cursor_update" event. Negative coordinates are
// dropped rather than rejected; they carry no recoverable intent.
func CursorIngest(auth AuthContext, req protocolwire.CursorUpdateEvent) (*CursorInstruction, *protocolwire.ErrorPayload) {
	if errPayload := requireSession(auth, "share cursor moves"); errPayload != nil {
		return nil, errPayload
	}
	if err := validate.Struct(req); err != nil {
		return nil, nil
	}
	return &CursorInstruction{
		userID:    auth.UserID(),
		sessionID: auth.SessionID(),
		socketID:  auth.SocketID(),
		cursor:    protocolwire.CursorState{Line: req.Line, Column: req.Column},
	}, nil
}
