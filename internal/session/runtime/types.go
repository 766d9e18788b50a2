package runtime

import (
	"context"

	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

// Emitter delivers session events to connected clients and maintains the
// socket/session binding on the transport side.
type Emitter interface {
	// EmitToSession emits an event to every socket bound to the session,
	// except skipSocketID when non-empty.
	EmitToSession(sessionID, event string, payload any, skipSocketID string)
	// EmitToSocket emits an event to one socket.
	EmitToSocket(socketID, event string, payload any)
	// BindSession marks a socket as joined to a session.
	BindSession(socketID, sessionID string)
	// ClearSession drops a socket back to its pre-join state, provided it is
	// still bound to sessionID. Session switches enqueue the old session's
	// terminate and the new session's join into two unordered runtimes, so a
	// rebinding to the new session must win over a late clear from the old.
	ClearSession(socketID, sessionID string)
}

// Store abstracts persistence for the runtime.
//
// GetSession returns sql.ErrNoRows for unknown session ids.
type Store interface {
	GetSession(ctx context.Context, sessionID string) (SessionRecord, error)
	ListParticipants(ctx context.Context, sessionID string) ([]ParticipantProfile, error)
	ListRecentMessages(ctx context.Context, sessionID string, limit int64) ([]MessageRecord, error)
	CreateMessage(ctx context.Context, msg MessageRecord) (MessageRecord, error)
}

// SessionRecord is the runtime view of a persisted session.
//
// Code is the document at load time; the runtime's cached copy is the live
// buffer afterwards. Timestamps are ms since epoch.
type SessionRecord struct {
	ID        string
	Title     string
	Kind      string
	Language  string
	Code      string
	CreatedBy string
	CreatedAt int64
	UpdatedAt int64
}

// ParticipantProfile is one entry of a session's durable authorized list,
// joined with the user profile.
type ParticipantProfile struct {
	UserID    string
	Name      string
	AvatarURL string
	Role      string
}

// MessageRecord is the runtime view of a persisted chat message.
//
// CreatedAt is ms since epoch.
type MessageRecord struct {
	ID        string
	SessionID string
	UserID    string
	Content   string
	Kind      string
	CreatedAt int64
}

// Terminate triggers. Leave and disconnect converge on the same removal
// path; the trigger only annotates logs.
const (
	TriggerLeave      = "leave"
	TriggerDisconnect = "disconnect"
)

type joinEvent struct {
	ctx      context.Context
	userID   string
	socketID string
}

type terminateEvent struct {
	userID   string
	socketID string
	trigger  string
}

type codeEvent struct {
	userID   string
	socketID string
	code     string
	change   any
}

type cursorEvent struct {
	userID   string
	socketID string
	cursor   wire.CursorState
}

type selectionEvent struct {
	userID    string
	socketID  string
	selection wire.SelectionState
}

type chatEvent struct {
	ctx      context.Context
	userID   string
	socketID string
	content  string
	kind     string
}

type authorizeEvent struct {
	profile ParticipantProfile
}
