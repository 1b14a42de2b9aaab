package service

import (
	"context"
	"errors"
	"testing"

	"habit-server/internal/domain"
)

func TestResolveIdentifier(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()

	alice := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if _, err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("seed alice: %v", err)
	}
	// bob's email collides with alice's username
	bob := &domain.User{Username: "bob", Email: "alice", PasswordHash: "x"}
	if _, err := repo.Create(ctx, bob); err != nil {
		t.Fatalf("seed bob: %v", err)
	}
	// carol uses the same string for username and email
	carol := &domain.User{Username: "carol@example.com", Email: "carol@example.com", PasswordHash: "x"}
	if _, err := repo.Create(ctx, carol); err != nil {
		t.Fatalf("seed carol: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		wantID     int64
		wantErr    error
	}{
		{"by email", "alice@example.com", alice.ID, nil},
		{"by username", "bob", bob.ID, nil},
		{"unknown", "ghost", 0, errIdentifierNotFound},
		{"cross-namespace collision", "alice", 0, errIdentifierAmbiguous},
		{"same record in both namespaces", "carol@example.com", carol.ID, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := resolveIdentifier(ctx, repo, tc.identifier)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveIdentifier: %v", err)
			}
			if user.ID != tc.wantID {
				t.Errorf("resolved id %d, want %d", user.ID, tc.wantID)
			}
		})
	}
}
