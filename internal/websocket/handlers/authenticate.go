package handlers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ezekaj/learning-sol-sub000/internal/models"
	protocolwire "github.com/ezekaj/learning-sol-sub000/shared/wire"
)

// Identity is the validated authenticate payload.
type Identity struct {
	Token  string
	UserID string
}

// ValidateAuthenticatePayload validates an "authenticate" event payload. The
// userId field is optional; when present it must later match the token
// subject.
func ValidateAuthenticatePayload(req protocolwire.AuthenticateEvent) (Identity, error) {
	if err := validate.Struct(req); err != nil {
		return Identity{}, errors.New("missing authentication token")
	}
	return Identity{
		Token:  req.Token,
		UserID: req.UserID,
	}, nil
}

// EnsureUser finds the user row for an authenticated subject, creating it on
// first contact. Non-empty name or avatar claims refresh a stale profile so
// reconnecting clients pick up renames without a separate profile call.
func EnsureUser(ctx context.Context, deps Deps, userID, name, avatarURL string) (models.User, error) {
	user, err := deps.Users().GetUserByID(ctx, userID)
	if err == sql.ErrNoRows {
		displayName := name
		if displayName == "" {
			displayName = userID
		}
		return deps.Users().CreateUser(ctx, models.CreateUserParams{
			ID:        userID,
			Name:      displayName,
			AvatarURL: sql.NullString{String: avatarURL, Valid: avatarURL != ""},
			Role:      "member",
			CreatedAt: deps.Now(),
		})
	}
	if err != nil {
		return models.User{}, err
	}

	if (name != "" && name != user.Name) || (avatarURL != "" && avatarURL != user.AvatarURL.String) {
		updated := user
		if name != "" {
			updated.Name = name
		}
		if avatarURL != "" {
			updated.AvatarURL = sql.NullString{String: avatarURL, Valid: true}
		}
		updated.UpdatedAt = deps.Now()
		if err := deps.Users().UpdateUserProfile(ctx, models.UpdateUserProfileParams{
			ID:        updated.ID,
			Name:      updated.Name,
			AvatarURL: updated.AvatarURL,
			UpdatedAt: updated.UpdatedAt,
		}); err != nil {
			return models.User{}, err
		}
		return updated, nil
	}

	return user, nil
}
