package models

import (
	"context"
	"time"
)

// GetSessionByID fetches one session row.
func (q *Queries) GetSessionByID(ctx context.Context, id string) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx, `
SELECT id, title, kind, language, code, created_by, created_at, updated_at
FROM sessions
WHERE id = ?;
`, id).Scan(&s.ID, &s.Title, &s.Kind, &s.Language, &s.Code, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateSessionParams are the arguments for CreateSession.
type CreateSessionParams struct {
	ID        string
	Title     string
	Kind      string
	Language  string
	Code      string
	CreatedBy string
	CreatedAt time.Time
}

// CreateSession inserts a new session row and returns it.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO sessions (id, title, kind, language, code, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, arg.ID, arg.Title, arg.Kind, arg.Language, arg.Code, arg.CreatedBy, arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        arg.ID,
		Title:     arg.Title,
		Kind:      arg.Kind,
		Language:  arg.Language,
		Code:      arg.Code,
		CreatedBy: arg.CreatedBy,
		CreatedAt: arg.CreatedAt,
		UpdatedAt: arg.CreatedAt,
	}, nil
}

// ListSessionsForUserParams are the arguments for ListSessionsForUser.
type ListSessionsForUserParams struct {
	UserID string
	Limit  int64
}

// ListSessionsForUser lists the sessions a user is authorized for, newest
// first.
func (q *Queries) ListSessionsForUser(ctx context.Context, arg ListSessionsForUserParams) ([]Session, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT s.id, s.title, s.kind, s.language, s.code, s.created_by, s.created_at, s.updated_at
FROM sessions s
JOIN session_participants p ON p.session_id = s.id
WHERE p.user_id = ?
ORDER BY s.created_at DESC
LIMIT ?;
`, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Title, &s.Kind, &s.Language, &s.Code, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
