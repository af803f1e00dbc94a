//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/usecase"
)

func TestAuthUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hash, not the password", func(t *testing.T) {
		repo := newMemUserRepo()
		uc := usecase.NewAuthUseCase(repo, plainHasher{}, newTestLogger(), false)

		u, err := uc.Register(ctx, "  testuser ", "testpass123")
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if u.Username != "testuser" {
			t.Errorf("username not trimmed: %q", u.Username)
		}
		stored, _ := repo.FindByUsername(ctx, "testuser")
		if stored.PasswordHash == "testpass123" || stored.PasswordHash != "h:testpass123" {
			t.Errorf("unexpected stored hash %q", stored.PasswordHash)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		uc := usecase.NewAuthUseCase(newMemUserRepo(), plainHasher{}, newTestLogger(), false)
		if _, err := uc.Register(ctx, "duplicate", "password123"); err != nil {
			t.Fatalf("first Register: %v", err)
		}
		if _, err := uc.Register(ctx, "duplicate", "different456"); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("blank fields", func(t *testing.T) {
		uc := usecase.NewAuthUseCase(newMemUserRepo(), plainHasher{}, newTestLogger(), false)
		if _, err := uc.Register(ctx, "  ", "x"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v", err)
		}
		if _, err := uc.Register(ctx, "bob", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	uc := usecase.NewAuthUseCase(repo, plainHasher{}, newTestLogger(), true)

	t.Run("no users registered", func(t *testing.T) {
		if _, err := uc.Login(ctx, "nonexistent", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	if _, err := uc.Register(ctx, "logintest", "testpass123"); err != nil {
		t.Fatal(err)
	}

	t.Run("success", func(t *testing.T) {
		u, err := uc.Login(ctx, "logintest", "testpass123")
		if err != nil || u.Username != "logintest" {
			t.Fatalf("Login = %v, %v", u, err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := uc.Login(ctx, "logintest", "wrong456"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		repo.findErr = errors.New("disk gone")
		defer func() { repo.findErr = nil }()
		_, err := uc.Login(ctx, "logintest", "testpass123")
		if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		if _, err := uc.Lookup(ctx, "logintest"); err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if _, err := uc.Lookup(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Lookup(ghost) err = %v", err)
		}
	})
}
