package runtime

import (
	"context"

	"github.com/samber/lo"

	"github.com/ezekaj/learning-sol-sub000/internal/models"
)

// SQLStore implements Store on top of the models query layer.
type SQLStore struct {
	Queries *models.Queries
}

func (s *SQLStore) GetSession(ctx context.Context, sessionID string) (SessionRecord, error) {
	session, err := s.Queries.GetSessionByID(ctx, sessionID)
	if err != nil {
		return SessionRecord{}, err
	}
	return SessionRecord{
		ID:        session.ID,
		Title:     session.Title,
		Kind:      session.Kind,
		Language:  session.Language,
		Code:      session.Code,
		CreatedBy: session.CreatedBy,
		CreatedAt: session.CreatedAt.UnixMilli(),
		UpdatedAt: session.UpdatedAt.UnixMilli(),
	}, nil
}

func (s *SQLStore) ListParticipants(ctx context.Context, sessionID string) ([]ParticipantProfile, error) {
	rows, err := s.Queries.ListSessionParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row models.SessionParticipantProfile, _ int) ParticipantProfile {
		return ParticipantProfile{
			UserID:    row.UserID,
			Name:      row.Name,
			AvatarURL: row.AvatarURL.String,
			Role:      row.Role,
		}
	}), nil
}

func (s *SQLStore) ListRecentMessages(ctx context.Context, sessionID string, limit int64) ([]MessageRecord, error) {
	rows, err := s.Queries.ListRecentChatMessages(ctx, models.ListRecentChatMessagesParams{
		SessionID: sessionID,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row models.ChatMessage, _ int) MessageRecord {
		return MessageRecord{
			ID:        row.ID,
			SessionID: row.SessionID,
			UserID:    row.UserID,
			Content:   row.Content,
			Kind:      row.Kind,
			CreatedAt: row.CreatedAtMs,
		}
	}), nil
}

func (s *SQLStore) CreateMessage(ctx context.Context, msg MessageRecord) (MessageRecord, error) {
	row, err := s.Queries.CreateChatMessage(ctx, models.CreateChatMessageParams{
		ID:          msg.ID,
		SessionID:   msg.SessionID,
		UserID:      msg.UserID,
		Content:     msg.Content,
		Kind:        msg.Kind,
		CreatedAtMs: msg.CreatedAt,
	})
	if err != nil {
		return MessageRecord{}, err
	}
	return MessageRecord{
		ID:        row.ID,
		SessionID: row.SessionID,
		UserID:    row.UserID,
		Content:   row.Content,
		Kind:      row.Kind,
		CreatedAt: row.CreatedAtMs,
	}, nil
}
