package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

const createHabitsTables = `
CREATE TABLE IF NOT EXISTS habits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	public_id TEXT NOT NULL UNIQUE,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS habit_completions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	habit_id INTEGER NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
	completed_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id);
CREATE INDEX IF NOT EXISTS idx_habit_completions_habit_id ON habit_completions(habit_id);
`

type HabitRepository struct {
	db *sql.DB
}

func NewHabitRepository(db *sql.DB) repository.HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createHabitsTables); err != nil {
		return fmt.Errorf("create habits tables: %w", err)
	}
	return nil
}

func (r *HabitRepository) Create(ctx context.Context, habit *domain.Habit) (int64, error) {
	now := time.Now().UTC()
	habit.CreatedAt = now
	habit.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO habits (public_id, user_id, name, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		habit.PublicID,
		habit.UserID,
		habit.Name,
		habit.Description,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert habit: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("habit last insert id: %w", err)
	}
	habit.ID = id
	return id, nil
}

func (r *HabitRepository) Get(ctx context.Context, id int64) (*domain.Habit, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, public_id, user_id, name, description, created_at, updated_at
FROM habits
WHERE id = ?`, id)

	var habit domain.Habit
	if err := row.Scan(
		&habit.ID,
		&habit.PublicID,
		&habit.UserID,
		&habit.Name,
		&habit.Description,
		&habit.CreatedAt,
		&habit.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan habit: %w", err)
	}

	completions, err := r.listCompletions(ctx, habit.ID)
	if err != nil {
		return nil, err
	}
	habit.Completions = completions
	return &habit, nil
}

func (r *HabitRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, public_id, user_id, name, description, created_at, updated_at
FROM habits
WHERE user_id = ?
ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []domain.Habit
	for rows.Next() {
		var habit domain.Habit
		if err := rows.Scan(
			&habit.ID,
			&habit.PublicID,
			&habit.UserID,
			&habit.Name,
			&habit.Description,
			&habit.CreatedAt,
			&habit.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate habits: %w", err)
	}

	for i := range habits {
		completions, err := r.listCompletions(ctx, habits[i].ID)
		if err != nil {
			return nil, err
		}
		habits[i].Completions = completions
	}
	return habits, nil
}

func (r *HabitRepository) AddCompletion(ctx context.Context, completion *domain.HabitCompletion) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO habit_completions (habit_id, completed_at)
VALUES (?, ?)`,
		completion.HabitID,
		completion.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert habit completion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("habit completion last insert id: %w", err)
	}
	completion.ID = id

	if _, err := r.db.ExecContext(ctx, `UPDATE habits SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), completion.HabitID); err != nil {
		return fmt.Errorf("touch habit: %w", err)
	}
	return nil
}

func (r *HabitRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete habit rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *HabitRepository) listCompletions(ctx context.Context, habitID int64) ([]domain.HabitCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, habit_id, completed_at
FROM habit_completions
WHERE habit_id = ?
ORDER BY completed_at`, habitID)
	if err != nil {
		return nil, fmt.Errorf("list habit completions: %w", err)
	}
	defer rows.Close()

	var completions []domain.HabitCompletion
	for rows.Next() {
		var c domain.HabitCompletion
		if err := rows.Scan(&c.ID, &c.HabitID, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan habit completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate habit completions: %w", err)
	}
	return completions, nil
}
