package repository

import (
	"context"

	"page-summarizer/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Create inserts a new user; returns domain.ErrAlreadyExists on a duplicate username.
	Create(ctx context.Context, u *model.User) error
	// FindByUsername returns domain.ErrNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}
