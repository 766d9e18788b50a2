package models

import (
	"database/sql"
	"time"
)

// User is a row of the users table.
type User struct {
	ID        string
	Name      string
	AvatarURL sql.NullString
	// Role is the platform role ("member" or "instructor").
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is a row of the sessions table.
//
// Code holds the shared document as of session creation; the live buffer is
// owned by the session runtime and is not written back here.
type Session struct {
	ID        string
	Title     string
	Kind      string
	Language  string
	Code      string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionParticipant is a row of the session_participants table, the durable
// authorized-participant list.
type SessionParticipant struct {
	SessionID string
	UserID    string
	// Role is the participant role within the session ("owner" or "editor").
	Role    string
	AddedAt time.Time
}

// SessionParticipantProfile is a participant row joined with the user
// profile.
type SessionParticipantProfile struct {
	UserID    string
	Name      string
	AvatarURL sql.NullString
	Role      string
	AddedAt   time.Time
}

// ChatMessage is a row of the chat_messages table.
//
// CreatedAtMs is assigned by the server at persist time; it is the timestamp
// echoed on the wire.
type ChatMessage struct {
	ID          string
	SessionID   string
	UserID      string
	Content     string
	Kind        string
	CreatedAtMs int64
}
