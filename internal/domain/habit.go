package domain

import "time"

// Habit is a recurring activity a user tracks.
type Habit struct {
	ID          int64
	PublicID    string
	UserID      int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Completions []HabitCompletion
}

// HabitCompletion records one occurrence of a habit being done.
type HabitCompletion struct {
	ID          int64
	HabitID     int64
	CompletedAt time.Time
}

// CurrentStreak reports the streak derived from the recorded completions.
// A habit completed today counts as a streak of one; streaks across longer
// windows depend on per-habit frequency, which is not modelled yet.
func (h *Habit) CurrentStreak(now time.Time) int {
	if len(h.Completions) == 0 {
		return 0
	}
	last := h.Completions[len(h.Completions)-1].CompletedAt
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return 1
	}
	return 0
}
