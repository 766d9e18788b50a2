package handlers

import (
	"context"

	"github.com/ezekaj/learning-sol-sub000/internal/models"
)

type fakeUserQueries struct {
	get    func(ctx context.Context, id string) (models.User, error)
	create func(ctx context.Context, arg models.CreateUserParams) (models.User, error)
	update func(ctx context.Context, arg models.UpdateUserProfileParams) error
}

func (f fakeUserQueries) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return f.get(ctx, id)
}

func (f fakeUserQueries) CreateUser(ctx context.Context, arg models.CreateUserParams) (models.User, error) {
	return f.create(ctx, arg)
}

func (f fakeUserQueries) UpdateUserProfile(ctx context.Context, arg models.UpdateUserProfileParams) error {
	if f.update == nil {
		return nil
	}
	return f.update(ctx, arg)
}
