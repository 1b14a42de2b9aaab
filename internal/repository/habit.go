package repository

import (
	"context"

	"habit-server/internal/domain"
)

// HabitRepository defines persistence operations for Habit entities and
// their completions.
type HabitRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, habit *domain.Habit) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Habit, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Habit, error)
	AddCompletion(ctx context.Context, completion *domain.HabitCompletion) error
	Delete(ctx context.Context, id int64) error
}
