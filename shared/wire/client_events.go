package wire

// Client-emitted Socket.IO event payloads.
//
// All payloads are single JSON objects. Validation tags are enforced at
// ingest before any session state is touched.

// AuthenticateEvent is the payload for the `authenticate` event.
type AuthenticateEvent struct {
	// UserID optionally declares the caller identity; it must match the
	// token subject when present.
	UserID string `json:"userId,omitempty"`
	// Token is the signed identity token.
	Token string `json:"token" binding:"required"`
}

// JoinSessionEvent is the payload for the `join_session` event.
type JoinSessionEvent struct {
	// SessionID is the id of the session to join.
	SessionID string `json:"sessionId" binding:"required"`
}

// CodeChangeEvent is the payload for the `code_change` event.
type CodeChangeEvent struct {
	// Code is the full post-edit document content. Empty is a valid
	// document.
	Code string `json:"code"`
	// Change is an optional client-defined change summary, relayed opaquely.
	Change any `json:"change,omitempty"`
}

// CursorUpdateEvent is the payload for the `cursor_update` event.
type CursorUpdateEvent struct {
	// Line is the zero-based cursor line.
	Line int `json:"line" binding:"gte=0"`
	// Column is the zero-based cursor column.
	Column int `json:"column" binding:"gte=0"`
}

// SelectionUpdateEvent is the payload for the `selection_update` event.
type SelectionUpdateEvent struct {
	// StartLine is the zero-based selection start line.
	StartLine int `json:"startLine" binding:"gte=0"`
	// StartColumn is the zero-based selection start column.
	StartColumn int `json:"startColumn" binding:"gte=0"`
	// EndLine is the zero-based selection end line.
	EndLine int `json:"endLine" binding:"gte=0"`
	// EndColumn is the zero-based selection end column.
	EndColumn int `json:"endColumn" binding:"gte=0"`
}

// SendMessageEvent is the payload for the `send_message` event.
type SendMessageEvent struct {
	// Content is the chat message body.
	Content string `json:"content" binding:"required"`
	// Kind classifies the message; defaults to "text".
	Kind string `json:"kind,omitempty" binding:"omitempty,oneof=text code system"`
}
