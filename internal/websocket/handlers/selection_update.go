package handlers

import protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"

// SelectionInstruction describes a validated selection_update operation.
type SelectionInstruction struct {
	userID    string
	sessionID string
	socketID  string
	selection protocolwire.SelectionState
}

// UserID returns the user whose selection changed.
func (s SelectionInstruction) UserID() string { return s.userID }

// SessionID returns the session the selection belongs to.
func (s SelectionInstruction) SessionID() string { return s.sessionID }

// SocketID returns the socket to skip when rebroadcasting.
func (s SelectionInstruction) SocketID() string { return s.socketID }

// Selection returns the new selection range.
func (s SelectionInstruction) Selection() protocolwire.SelectionState { return s.selection }

// SelectionIngest validates a "selection_update" event.
func SelectionIngest(auth AuthContext, req protocolwire.SelectionUpdateEvent) (*SelectionInstruction, *protocolwire.ErrorPayload) {
	if errPayload := requireSession(auth, "share selections"); errPayload != nil {
		return nil, errPayload
	}
	if err := validate.Struct(req); err != nil {
		return nil, nil
	}
	return &SelectionInstruction{
		userID:    auth.UserID(),
		sessionID: auth.SessionID(),
		socketID:  auth.SocketID(),
		selection: protocolwire.SelectionState{
			StartLine:   req.StartLine,
			StartColumn: req.StartColumn,
			EndLine:     req.EndLine,
			EndColumn:   req.EndColumn,
		},
	}, nil
}
