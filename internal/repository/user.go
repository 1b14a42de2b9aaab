package repository

import (
	"context"
	"errors"

	"habit-server/internal/domain"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when a write violates the username
	// uniqueness constraint.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned when a write violates the email uniqueness
	// constraint.
	ErrEmailTaken = errors.New("email already taken")
)

// UserRepository defines persistence operations for User entities. The
// store enforces username and email uniqueness itself; Create and Update
// report constraint violations with ErrUsernameTaken/ErrEmailTaken so
// callers need not rely on their own pre-checks under concurrency.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}
