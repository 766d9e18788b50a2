package wire

// Server-emitted Socket.IO event payloads.
//
// Timestamps are wall-clock milliseconds since epoch throughout.

// AuthenticatedPayload is emitted as `authenticated` after a successful
// identity check.
type AuthenticatedPayload struct {
	// UserID is the authenticated user id.
	UserID string `json:"userId"`
}

// AuthenticationFailedPayload is emitted as `authentication_failed` when an
// identity check is rejected. The connection stays open.
type AuthenticationFailedPayload struct {
	// Message is a human-readable rejection reason.
	Message string `json:"message"`
}

// SessionJoinedPayload is emitted as `session_joined` to the joiner only.
type SessionJoinedPayload struct {
	// Session is the joined session snapshot.
	Session SessionInfo `json:"session"`
	// ChatHistory is the persisted message history, oldest first.
	ChatHistory []ChatMessage `json:"chatHistory"`
	// Presence is the current presence snapshot, join order.
	Presence []PresenceEntry `json:"presence"`
}

// UserJoinedPayload is emitted as `user_joined` to every participant except
// the joiner.
type UserJoinedPayload struct {
	// User is the joiner's profile.
	User Participant `json:"user"`
	// Presence is the presence snapshot after the join.
	Presence []PresenceEntry `json:"presence"`
}

// UserLeftPayload is emitted as `user_left` to the remaining participants.
type UserLeftPayload struct {
	// UserID is the departed user id.
	UserID string `json:"userId"`
	// Presence is the presence snapshot after the departure.
	Presence []PresenceEntry `json:"presence"`
}

// CodeUpdatedPayload is emitted as `code_updated` to every participant except
// the sender.
type CodeUpdatedPayload struct {
	// Code is the full post-edit document content.
	Code string `json:"code"`
	// Change is the sender's opaque change summary, if any.
	Change any `json:"change,omitempty"`
	// SenderID is the editing user id.
	SenderID string `json:"senderId"`
	// Timestamp is the server receive time in ms since epoch.
	Timestamp int64 `json:"timestamp"`
}

// CursorUpdatedPayload is emitted as `cursor_updated` to every participant
// except the sender.
type CursorUpdatedPayload struct {
	// SenderID is the user whose cursor moved.
	SenderID string `json:"senderId"`
	// Cursor is the new cursor position.
	Cursor CursorState `json:"cursor"`
}

// SelectionUpdatedPayload is emitted as `selection_updated` to every
// participant except the sender.
type SelectionUpdatedPayload struct {
	// SenderID is the user whose selection changed.
	SenderID string `json:"senderId"`
	// Selection is the new selection range.
	Selection SelectionState `json:"selection"`
}

// ErrorPayload is emitted as `error` to the offending socket only.
type ErrorPayload struct {
	// Code is one of the ErrCode* constants.
	Code string `json:"code"`
	// Message is a human-readable annotation.
	Message string `json:"message"`
}

// Error codes carried by ErrorPayload.
const (
	// ErrCodeUnauthenticated rejects session events from sockets without an
	// attached identity.
	ErrCodeUnauthenticated = "unauthenticated"
	// ErrCodeForbidden rejects joins by users outside the authorized
	// participant list.
	ErrCodeForbidden = "forbidden"
	// ErrCodeNotFound rejects joins of unknown sessions.
	ErrCodeNotFound = "not_found"
	// ErrCodeNotInSession rejects session-scoped events from sockets not
	// bound to a session.
	ErrCodeNotInSession = "not_in_session"
	// ErrCodePersistenceFailure reports a failed durable write.
	ErrCodePersistenceFailure = "persistence_failure"
)
