package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"habit-server/internal/auth"
	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

// timingDummyHash is compared against the supplied password whenever the
// login identifier resolves to no user, so the unknown-identifier and
// wrong-password paths cost the same bcrypt work.
const timingDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Session is the result of a successful authentication: a signed bearer
// token and the user it vouches for.
type Session struct {
	Token    string
	Username string
	User     *domain.User
}

// RegisterParams carries the fields accepted at account creation.
type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
}

// AuthService orchestrates login and registration.
type AuthService interface {
	Login(ctx context.Context, identifier, password string) (*Session, error)
	Register(ctx context.Context, params RegisterParams) (*Session, error)
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenCodec
	logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenCodec, logger *logrus.Logger) AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Login resolves the identifier, verifies the password and issues a session
// token. Every failure collapses to ErrInvalidCredentials; nothing is
// persisted unless authentication succeeds.
func (s *authService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		s.hasher.Verify(password, timingDummyHash)
		return nil, ErrInvalidCredentials
	}

	user, err := resolveIdentifier(ctx, s.users, identifier)
	if err != nil {
		if errors.Is(err, errIdentifierNotFound) || errors.Is(err, errIdentifierAmbiguous) {
			s.hasher.Verify(password, timingDummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.WithField("username", user.Username).Info("user logged in")
	return &Session{Token: token, Username: user.Username, User: user}, nil
}

// Register creates an account and immediately authenticates it, so a fresh
// registration yields an active session. The username check runs before the
// email check; when both collide the username conflict is the one reported.
func (s *authService) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	username := strings.TrimSpace(params.Username)
	email := strings.TrimSpace(params.Email)

	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(params.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, ErrDuplicateUsername
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		DateOfBirth:  params.DateOfBirth,
		IsAdmin:      false,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		// The store's unique indexes are authoritative; a concurrent
		// registration can slip past the pre-checks above.
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	s.logger.WithField("username", user.Username).Info("user registered")
	return s.Login(ctx, username, params.Password)
}
