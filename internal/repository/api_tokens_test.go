package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/testutil"
)

func TestAPITokenRepository_Scopes(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	tokenRepo := repository.NewAPITokenRepository(db)
	user := createTestUser(t, repository.NewUserRepository(db))
	ctx := context.Background()
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		scope     string
		expiresAt *time.Time
		expected  string
	}{
		{"default is api", "", nil, repository.ScopeAPI},
		{"intake", repository.ScopeIntake, &expiry, repository.ScopeIntake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := repository.HashToken("raw-" + tt.name)
			if _, err := tokenRepo.Create(ctx, models.APIToken{
				Name: tt.name, TokenHash: hash, Scope: tt.scope, CreatedByUserID: user.ID, ExpiresAt: tt.expiresAt,
			}); err != nil {
				t.Fatalf("creating token: %v", err)
			}

			found, err := tokenRepo.FindByTokenHash(ctx, hash)
			if err != nil {
				t.Fatalf("finding token: %v", err)
			}
			if found.Scope != tt.expected {
				t.Errorf("expected scope %q, got %q", tt.expected, found.Scope)
			}
			if (found.ExpiresAt == nil) != (tt.expiresAt == nil) {
				t.Errorf("expected expiry %v, got %v", tt.expiresAt, found.ExpiresAt)
			}
			if found.ExpiresAt != nil && !found.ExpiresAt.Equal(expiry) {
				t.Errorf("expected expiry %s, got %s", expiry, found.ExpiresAt)
			}
		})
	}

	tokens, err := tokenRepo.FindAll(ctx)
	if err != nil || len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %d (%v)", len(tokens), err)
	}
}

func TestAPITokenRepository_RevokeInsideTransaction(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	user, err := store.Users.Create(ctx, models.User{OIDCSubject: "sub-admin", Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	created, err := store.APITokens.Create(ctx, models.APIToken{Name: "intake form", TokenHash: "hash-intake", Scope: repository.ScopeIntake, CreatedByUserID: user.ID})
	if err != nil {
		t.Fatalf("creating token: %v", err)
	}

	err = store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		return repos.APITokens.Delete(ctx, created.ID)
	})
	if err != nil {
		t.Fatalf("revoking: %v", err)
	}
	if _, err := store.APITokens.FindByTokenHash(ctx, "hash-intake"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected revoked token to be gone, got %v", err)
	}

	err = store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		return repos.APITokens.Delete(ctx, created.ID)
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound revoking twice, got %v", err)
	}
}

func TestHashToken(t *testing.T) {
	const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	if got := repository.HashToken("abc"); got != abc {
		t.Errorf("expected sha256 hex %s, got %s", abc, got)
	}
	if repository.HashToken("token1") == repository.HashToken("token2") {
		t.Error("different tokens should produce different hashes")
	}
}
