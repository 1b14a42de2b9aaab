package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

// HabitService coordinates habit tracking for authenticated users. Reads and
// writes on a specific habit are allowed to its owner or an admin.
type HabitService interface {
	Create(ctx context.Context, principal *domain.User, name, description string) (*domain.Habit, error)
	Get(ctx context.Context, principal *domain.User, id int64) (*domain.Habit, error)
	ListOwn(ctx context.Context, principal *domain.User) ([]domain.Habit, error)
	Complete(ctx context.Context, principal *domain.User, id int64, completedAt time.Time) (*domain.Habit, error)
	Delete(ctx context.Context, principal *domain.User, id int64) error
}

type habitService struct {
	habits repository.HabitRepository
}

func NewHabitService(habits repository.HabitRepository) HabitService {
	return &habitService{habits: habits}
}

func (s *habitService) Create(ctx context.Context, principal *domain.User, name, description string) (*domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("habit name is required")
	}

	habit := &domain.Habit{
		PublicID:    uuid.NewString(),
		UserID:      principal.ID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if _, err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *habitService) Get(ctx context.Context, principal *domain.User, id int64) (*domain.Habit, error) {
	return s.getOwned(ctx, principal, id)
}

func (s *habitService) ListOwn(ctx context.Context, principal *domain.User) ([]domain.Habit, error) {
	return s.habits.ListByUser(ctx, principal.ID)
}

func (s *habitService) Complete(ctx context.Context, principal *domain.User, id int64, completedAt time.Time) (*domain.Habit, error) {
	habit, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}
	completion := &domain.HabitCompletion{
		HabitID:     habit.ID,
		CompletedAt: completedAt,
	}
	if err := s.habits.AddCompletion(ctx, completion); err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}
	habit.Completions = append(habit.Completions, *completion)
	return habit, nil
}

func (s *habitService) Delete(ctx context.Context, principal *domain.User, id int64) error {
	habit, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.habits.Delete(ctx, habit.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// getOwned loads a habit and applies the access policy. Existence is checked
// first: an unknown id is not-found for everyone, an existing one owned by
// someone else is forbidden.
func (s *habitService) getOwned(ctx context.Context, principal *domain.User, id int64) (*domain.Habit, error) {
	habit, err := s.habits.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canAccess(principal, habit.UserID) {
		return nil, ErrForbidden
	}
	return habit, nil
}
