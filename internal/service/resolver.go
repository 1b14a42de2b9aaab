package service

import (
	"context"
	"errors"
	"fmt"

	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

var (
	errIdentifierNotFound  = errors.New("identifier does not match any user")
	errIdentifierAmbiguous = errors.New("identifier matches distinct users")
)

// resolveIdentifier maps a free-form login identifier to exactly one user.
// Username and email live in separate unique namespaces, so the string is
// looked up in both. If it hits two distinct records (one user's username is
// another user's email) the match is ambiguous and nobody is authenticated
// with it; the caller reports ambiguity and not-found identically.
func resolveIdentifier(ctx context.Context, users repository.UserRepository, identifier string) (*domain.User, error) {
	byUsername, err := users.GetByUsername(ctx, identifier)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup by username: %w", err)
	}
	byEmail, err := users.GetByEmail(ctx, identifier)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	switch {
	case byUsername == nil && byEmail == nil:
		return nil, errIdentifierNotFound
	case byUsername != nil && byEmail != nil && byUsername.ID != byEmail.ID:
		return nil, errIdentifierAmbiguous
	case byUsername != nil:
		return byUsername, nil
	default:
		return byEmail, nil
	}
}
