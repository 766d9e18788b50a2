package wire

// SessionInfo is the session object embedded in wire payloads and HTTP
// responses.
type SessionInfo struct {
	// ID is the session id.
	ID string `json:"id"`
	// Title is the human-readable session title.
	Title string `json:"title"`
	// Kind classifies the session (e.g. "pair", "classroom").
	Kind string `json:"kind"`
	// Language is the editor language of the shared document.
	Language string `json:"language"`
	// Code is the current shared document content.
	Code string `json:"code"`
	// CreatedBy is the owning user id.
	CreatedBy string `json:"createdBy"`
	// CreatedAt is the creation time in ms since epoch.
	CreatedAt int64 `json:"createdAt"`
	// UpdatedAt is the last update time in ms since epoch.
	UpdatedAt int64 `json:"updatedAt"`
}

// Participant is the user profile object embedded in wire payloads.
type Participant struct {
	// ID is the user id.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// AvatarURL is the avatar location; empty when unset.
	AvatarURL string `json:"avatarUrl,omitempty"`
	// Role is the participant role within the session ("owner" or "editor").
	Role string `json:"role"`
}

// ChatMessage is the persisted chat message object. It is both the
// `message_received` payload and the chat-history element.
type ChatMessage struct {
	// ID is the server-assigned message id.
	ID string `json:"id"`
	// SessionID is the owning session id.
	SessionID string `json:"sessionId"`
	// SenderID is the authoring user id.
	SenderID string `json:"senderId"`
	// Author is the sender display name at send time.
	Author string `json:"author"`
	// Content is the message body.
	Content string `json:"content"`
	// Kind classifies the message ("text", "code" or "system").
	Kind string `json:"kind"`
	// Timestamp is the persist time in ms since epoch.
	Timestamp int64 `json:"timestamp"`
}
