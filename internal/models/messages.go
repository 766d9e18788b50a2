package models

import (
	"context"
	"database/sql"
)

// CreateChatMessageParams are the arguments for CreateChatMessage.
type CreateChatMessageParams struct {
	ID          string
	SessionID   string
	UserID      string
	Content     string
	Kind        string
	CreatedAtMs int64
}

// CreateChatMessage inserts a chat message row and returns it.
func (q *Queries) CreateChatMessage(ctx context.Context, arg CreateChatMessageParams) (ChatMessage, error) {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO chat_messages (id, session_id, user_id, content, kind, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?);
`, arg.ID, arg.SessionID, arg.UserID, arg.Content, arg.Kind, arg.CreatedAtMs)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		ID:          arg.ID,
		SessionID:   arg.SessionID,
		UserID:      arg.UserID,
		Content:     arg.Content,
		Kind:        arg.Kind,
		CreatedAtMs: arg.CreatedAtMs,
	}, nil
}

// ListChatMessagesParams are the arguments for ListChatMessages.
type ListChatMessagesParams struct {
	SessionID string
	Limit     int64
	Offset    int64
}

// ListChatMessages lists a session's chat messages oldest first.
func (q *Queries) ListChatMessages(ctx context.Context, arg ListChatMessagesParams) ([]ChatMessage, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT id, session_id, user_id, content, kind, created_at_ms
FROM chat_messages
WHERE session_id = ?
ORDER BY created_at_ms ASC, id ASC
LIMIT ? OFFSET ?;
`, arg.SessionID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatMessages(rows)
}

// ListRecentChatMessagesParams are the arguments for ListRecentChatMessages.
type ListRecentChatMessagesParams struct {
	SessionID string
	Limit     int64
}

// ListRecentChatMessages returns the most recent page of a session's chat,
// reordered oldest first.
func (q *Queries) ListRecentChatMessages(ctx context.Context, arg ListRecentChatMessagesParams) ([]ChatMessage, error) {
	// Query newest-first then reverse to keep the page chronological.
	rows, err := q.db.QueryContext(ctx, `
SELECT id, session_id, user_id, content, kind, created_at_ms
FROM chat_messages
WHERE session_id = ?
ORDER BY created_at_ms DESC, id DESC
LIMIT ?;
`, arg.SessionID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanChatMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func scanChatMessages(rows *sql.Rows) ([]ChatMessage, error) {
	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Content, &m.Kind, &m.CreatedAtMs); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
