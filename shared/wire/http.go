package wire

// CreateSessionRequest is the HTTP POST /v1/sessions request body.
//
// The creator is the authenticated caller and becomes the session owner.
type CreateSessionRequest struct {
	// Title is the human-readable session title.
	Title string `json:"title" binding:"required"`
	// Kind classifies the session; defaults to "pair".
	Kind string `json:"kind" binding:"omitempty,oneof=pair classroom review"`
	// Language is the editor language; defaults to "solidity".
	Language string `json:"language"`
	// Code is the initial shared document content.
	Code string `json:"code"`
}

// CreateSessionResponse is the HTTP POST /v1/sessions response body.
type CreateSessionResponse struct {
	// Session contains the created session object.
	Session SessionInfo `json:"session"`
}

// ListSessionsResponse is the HTTP GET /v1/sessions response body.
type ListSessionsResponse struct {
	// Sessions are the sessions the caller is authorized for, newest first.
	Sessions []SessionInfo `json:"sessions"`
}

// GetSessionResponse is the HTTP GET /v1/sessions/:id response body.
type GetSessionResponse struct {
	// Session is the session object.
	Session SessionInfo `json:"session"`
	// Participants is the durable authorized participant list.
	Participants []Participant `json:"participants"`
}

// SessionMessagesResponse is the HTTP GET /v1/sessions/:id/messages response
// body.
type SessionMessagesResponse struct {
	// Messages is the chat history page, oldest first.
	Messages []ChatMessage `json:"messages"`
}

// AddParticipantRequest is the HTTP POST /v1/sessions/:id/participants
// request body.
type AddParticipantRequest struct {
	// UserID is the user to authorize for the session.
	UserID string `json:"userId" binding:"required"`
	// Role is the granted role; defaults to "editor".
	Role string `json:"role" binding:"omitempty,oneof=owner editor"`
}

// AddParticipantResponse is the HTTP POST /v1/sessions/:id/participants
// response body.
type AddParticipantResponse struct {
	// Participant is the authorized participant entry.
	Participant Participant `json:"participant"`
}
