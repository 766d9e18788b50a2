package handlers

import (
	"context"
	"time"

	"github.com/ezekaj/learning-sol-sub000/internal/models"
)

// UserQueries is the subset of user queries used by websocket handlers.
type UserQueries interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, arg models.CreateUserParams) (models.User, error)
	UpdateUserProfile(ctx context.Context, arg models.UpdateUserProfileParams) error
}

// Deps holds the narrow dependencies required by extracted websocket handlers.
type Deps struct {
	users UserQueries
	now   func() time.Time
}

// NewDeps builds a dependency bundle for handler calls.
func NewDeps(users UserQueries, now func() time.Time) Deps {
	return Deps{
		users: users,
		now:   now,
	}
}

func (d Deps) Users() UserQueries { return d.users }
func (d Deps) Now() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}
