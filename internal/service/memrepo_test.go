package service

import (
	"context"
	"sync"

	"habit-server/internal/domain"
	"habit-server/internal/repository"
)

// memUserRepo is an in-memory repository.UserRepository enforcing the same
// uniqueness rules as the sqlite store. It counts writes so tests can assert
// that failed logins persist nothing.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	writes int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) Init(ctx context.Context) error { return nil }

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, repository.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return 0, repository.ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.ID] = &clone
	r.writes++
	return user.ID, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	r.writes++
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	r.writes++
	return nil
}

func (r *memUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// memHabitRepo is an in-memory repository.HabitRepository.
type memHabitRepo struct {
	mu          sync.Mutex
	nextID      int64
	habits      map[int64]*domain.Habit
	completions map[int64][]domain.HabitCompletion
}

func newMemHabitRepo() *memHabitRepo {
	return &memHabitRepo{
		habits:      make(map[int64]*domain.Habit),
		completions: make(map[int64][]domain.HabitCompletion),
	}
}

func (r *memHabitRepo) Init(ctx context.Context) error { return nil }

func (r *memHabitRepo) Create(ctx context.Context, habit *domain.Habit) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	habit.ID = r.nextID
	clone := *habit
	r.habits[habit.ID] = &clone
	return habit.ID, nil
}

func (r *memHabitRepo) Get(ctx context.Context, id int64) (*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	habit, ok := r.habits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *habit
	clone.Completions = append([]domain.HabitCompletion(nil), r.completions[id]...)
	return &clone, nil
}

func (r *memHabitRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Habit
	for id, habit := range r.habits {
		if habit.UserID != userID {
			continue
		}
		clone := *habit
		clone.Completions = append([]domain.HabitCompletion(nil), r.completions[id]...)
		out = append(out, clone)
	}
	return out, nil
}

func (r *memHabitRepo) AddCompletion(ctx context.Context, completion *domain.HabitCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[completion.HabitID]; !ok {
		return repository.ErrNotFound
	}
	completion.ID = int64(len(r.completions[completion.HabitID]) + 1)
	r.completions[completion.HabitID] = append(r.completions[completion.HabitID], *completion)
	return nil
}

func (r *memHabitRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.habits, id)
	delete(r.completions, id)
	return nil
}
