package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"habit-server/internal/domain"
)

func seedUser(t *testing.T, repo *memUserRepo, username string, admin bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsAdmin:      admin,
	}
	if _, err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func TestUserDeletePolicy(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	alice := seedUser(t, repo, "alice", false)
	bob := seedUser(t, repo, "bob", false)
	admin := seedUser(t, repo, "root", true)

	if err := svc.Delete(ctx, alice, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin deleting another user: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, bob.ID); err != nil {
		t.Fatalf("bob should survive the forbidden delete: %v", err)
	}

	if err := svc.Delete(ctx, admin, bob.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctx, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("lookup after delete: err = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, alice, alice.ID); err != nil {
		t.Errorf("self delete: %v", err)
	}
}

func TestUserDeleteUnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	alice := seedUser(t, repo, "alice", false)

	// Existence is checked before policy, so even a non-admin learns only
	// that the id does not exist.
	if err := svc.Delete(ctx, alice, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestUserGetForPolicy(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	alice := seedUser(t, repo, "alice", false)
	bob := seedUser(t, repo, "bob", false)
	admin := seedUser(t, repo, "root", true)

	if _, err := svc.GetFor(ctx, alice, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin loading another user: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetFor(ctx, alice, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
	if user, err := svc.GetFor(ctx, alice, alice.ID); err != nil || user.ID != alice.ID {
		t.Errorf("self load: user %v err %v", user, err)
	}
	if user, err := svc.GetFor(ctx, admin, bob.ID); err != nil || user.ID != bob.ID {
		t.Errorf("admin load: user %v err %v", user, err)
	}
}

func TestUserUpdatePolicyAndPatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	alice := seedUser(t, repo, "alice", false)
	bob := seedUser(t, repo, "bob", false)
	admin := seedUser(t, repo, "root", true)

	first := "Alice"
	dob := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
	patch := domain.ProfilePatch{FirstName: &first, DateOfBirth: &dob}

	if _, err := svc.Update(ctx, alice, bob.ID, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin patching another user: err = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, alice, alice.ID, patch)
	if err != nil {
		t.Fatalf("self patch: %v", err)
	}
	if updated.FirstName != "Alice" {
		t.Errorf("FirstName = %q, want Alice", updated.FirstName)
	}
	if updated.DateOfBirth == nil || !updated.DateOfBirth.Equal(dob) {
		t.Errorf("DateOfBirth = %v, want %v", updated.DateOfBirth, dob)
	}
	if updated.LastName != "" {
		t.Errorf("unset patch field mutated LastName to %q", updated.LastName)
	}
	if updated.Username != "alice" || updated.IsAdmin {
		t.Error("patch reached an immutable field")
	}

	if _, err := svc.Update(ctx, admin, alice.ID, patch); err != nil {
		t.Errorf("admin patch: %v", err)
	}
}
