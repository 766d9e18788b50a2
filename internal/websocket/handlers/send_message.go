package handlers

import protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"

// MessageInstruction describes a validated send_message operation.
type MessageInstruction struct {
	userID    string
	sessionID string
	socketID  string
	content   string
	kind      string
}

// UserID returns the sending user id.
func (m MessageInstruction) UserID() string { return m.userID }

// SessionID returns the session the message targets.
func (m MessageInstruction) SessionID() string { return m.sessionID }

// SocketID returns the socket the message came from.
func (m MessageInstruction) SocketID() string { return m.socketID }

// Content returns the message body.
func (m MessageInstruction) Content() string { return m.content }

// Kind returns the normalized message kind.
func (m MessageInstruction) Kind() string { return m.kind }

// MessageIngest validates a "send_message" event and returns an enqueue
// instruction. Empty content is dropped without an error; nothing was said.
func MessageIngest(auth AuthContext, req protocolwire.SendMessageEvent) (*MessageInstruction, *protocolwire.ErrorPayload) {
	if errPayload := requireSession(auth, "send messages"); errPayload != nil {
		return nil, errPayload
	}
	if err := validate.Struct(req); err != nil {
		return nil, nil
	}

	kind := req.Kind
	if kind == "" {
		kind = "text"
	}

	return &MessageInstruction{
		userID:    auth.UserID(),
		sessionID: auth.SessionID(),
		socketID:  auth.SocketID(),
		content:   req.Content,
		kind:      kind,
	}, nil
}
