package repository

import (
	"context"
	"errors"

	"asha/internal/model"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines persistence operations for registered users.
type UserRepository interface {
	// Create stores the user unless the store already holds limit users
	// (ErrUserLimitReached) or the email is taken (ErrEmailRegistered).
	// Implementations serialize Create calls so the checks and the write
	// cannot interleave: the file store under its mutex, SQL stores by
	// locking the signup lock row.
	Create(ctx context.Context, user *model.User, limit int) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Count(ctx context.Context) (int, error)
}
