package models

import (
	"context"
	"time"
)

// AddSessionParticipantParams are the arguments for AddSessionParticipant.
type AddSessionParticipantParams struct {
	SessionID string
	UserID    string
	Role      string
	AddedAt   time.Time
}

// AddSessionParticipant authorizes a user for a session. Re-adding an
// existing participant keeps the original row.
func (q *Queries) AddSessionParticipant(ctx context.Context, arg AddSessionParticipantParams) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO session_participants (session_id, user_id, role, added_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(session_id, user_id) DO NOTHING;
`, arg.SessionID, arg.UserID, arg.Role, arg.AddedAt)
	return err
}

// ListSessionParticipants lists the durable authorized-participant list of a
// session joined with user profiles, in authorization order.
func (q *Queries) ListSessionParticipants(ctx context.Context, sessionID string) ([]SessionParticipantProfile, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT p.user_id, u.name, u.avatar_url, p.role, p.added_at
FROM session_participants p
JOIN users u ON u.id = p.user_id
WHERE p.session_id = ?
ORDER BY p.added_at ASC, p.user_id ASC;
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []SessionParticipantProfile
	for rows.Next() {
		var p SessionParticipantProfile
		if err := rows.Scan(&p.UserID, &p.Name, &p.AvatarURL, &p.Role, &p.AddedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

// IsSessionParticipantParams are the arguments for IsSessionParticipant.
type IsSessionParticipantParams struct {
	SessionID string
	UserID    string
}

// IsSessionParticipant reports whether a user is on the session's authorized
// list.
func (q *Queries) IsSessionParticipant(ctx context.Context, arg IsSessionParticipantParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, `
SELECT EXISTS(
  SELECT 1
  FROM session_participants
  WHERE session_id = ?
    AND user_id = ?
  LIMIT 1
);
`, arg.SessionID, arg.UserID).Scan(&exists)
	return exists, err
}
