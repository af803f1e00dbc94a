//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresUserRepo(testPool)
	ctx := context.Background()

	t.Run("create, find and count", func(t *testing.T) {
		cleanup(t)

		u, err := model.NewUser("integration_user", "hash")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}

		found, err := repo.FindByUsername(ctx, "integration_user")
		if err != nil {
			t.Fatalf("FindByUsername: %v", err)
		}
		if found.PasswordHash != "hash" {
			t.Errorf("PasswordHash = %q", found.PasswordHash)
		}

		n, err := repo.CountUsers(ctx)
		if err != nil || n != 1 {
			t.Errorf("CountUsers = %d, %v", n, err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		cleanup(t)
		u, _ := model.NewUser("dup", "h1")
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		u2, _ := model.NewUser("dup", "h2")
		if err := repo.Create(ctx, u2); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("second Create err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByUsername(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}
