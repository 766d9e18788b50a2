package wire

// CursorState is a cursor position within the shared document.
type CursorState struct {
	// Line is the zero-based line.
	Line int `json:"line"`
	// Column is the zero-based column.
	Column int `json:"column"`
}

// SelectionState is a selection range within the shared document.
type SelectionState struct {
	// StartLine is the zero-based start line.
	StartLine int `json:"startLine"`
	// StartColumn is the zero-based start column.
	StartColumn int `json:"startColumn"`
	// EndLine is the zero-based end line.
	EndLine int `json:"endLine"`
	// EndColumn is the zero-based end column.
	EndColumn int `json:"endColumn"`
}

// PresenceEntry is one user's presence record inside a snapshot.
//
// Snapshots preserve join order.
type PresenceEntry struct {
	// UserID is the tracked user id.
	UserID string `json:"userId"`
	// Name is the user display name.
	Name string `json:"name"`
	// AvatarURL is the avatar location; empty when unset.
	AvatarURL string `json:"avatarUrl,omitempty"`
	// Cursor is the last reported cursor position; null until reported.
	Cursor *CursorState `json:"cursor"`
	// Selection is the last reported selection; null until reported.
	Selection *SelectionState `json:"selection"`
	// UpdatedAt is the last presence activity in ms since epoch.
	UpdatedAt int64 `json:"updatedAt"`
}
