package models

import (
	"context"
	"database/sql"
	"time"
)

// GetUserByID fetches one user row.
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, `
SELECT id, name, avatar_url, role, created_at, updated_at
FROM users
WHERE id = ?;
`, id).Scan(&u.ID, &u.Name, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams are the arguments for CreateUser.
type CreateUserParams struct {
	ID        string
	Name      string
	AvatarURL sql.NullString
	Role      string
	CreatedAt time.Time
}

// CreateUser inserts a new user row and returns it.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO users (id, name, avatar_url, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?);
`, arg.ID, arg.Name, arg.AvatarURL, arg.Role, arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:        arg.ID,
		Name:      arg.Name,
		AvatarURL: arg.AvatarURL,
		Role:      arg.Role,
		CreatedAt: arg.CreatedAt,
		UpdatedAt: arg.CreatedAt,
	}, nil
}

// UpdateUserProfileParams are the arguments for UpdateUserProfile.
type UpdateUserProfileParams struct {
	ID        string
	Name      string
	AvatarURL sql.NullString
	UpdatedAt time.Time
}

// UpdateUserProfile updates the display name and avatar of a user.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE users
SET name = ?, avatar_url = ?, updated_at = ?
WHERE id = ?;
`, arg.Name, arg.AvatarURL, arg.UpdatedAt, arg.ID)
	return err
}
