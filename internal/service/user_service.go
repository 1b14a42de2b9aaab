package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

// UserService exposes profile operations gated by the self-or-admin policy.
// The target is always looked up first, so an unknown id reports not-found
// regardless of who asks.
type UserService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetFor(ctx context.Context, principal *domain.User, id int64) (*domain.User, error)
	Update(ctx context.Context, principal *domain.User, id int64, patch domain.ProfilePatch) (*domain.User, error)
	Delete(ctx context.Context, principal *domain.User, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetFor loads a profile on behalf of principal under the self-or-admin
// rule. Mutating callers settle the policy through it before performing any
// side effect of their own.
func (s *userService) GetFor(ctx context.Context, principal *domain.User, id int64) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(principal, user.ID) {
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, principal *domain.User, id int64, patch domain.ProfilePatch) (*domain.User, error) {
	user, err := s.GetFor(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, principal *domain.User, id int64) error {
	user, err := s.GetFor(ctx, principal, id)
	if err != nil {
		return err
	}

	if err := s.users.DeleteByID(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
