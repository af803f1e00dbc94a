package usecase

import (
	"context"
	"errors"
	"strings"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/domain/ports/repository"
	"page-summarizer/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// PasswordHasher hashes and checks passwords; security.PasswordHasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// AuthUseCase manages accounts in the credential store.
type AuthUseCase interface {
	// Register returns domain.ErrAlreadyExists when the username is taken.
	Register(ctx context.Context, username, password string) (*model.User, error)
	// Login returns domain.ErrInvalidCredentials for unknown users and wrong passwords alike.
	Login(ctx context.Context, username, password string) (*model.User, error)
	Lookup(ctx context.Context, username string) (*model.User, error)
}

type authUC struct {
	users  repository.UserRepository
	hasher PasswordHasher
	log    *zerolog.Logger
	dev    bool
}

func NewAuthUseCase(users repository.UserRepository, hasher PasswordHasher, logger *zerolog.Logger, dev bool) *authUC {
	l := logger.With().Str("component", "AuthUC").Logger()
	return &authUC{users: users, hasher: hasher, log: &l, dev: dev}
}

func (a *authUC) Register(ctx context.Context, username, password string) (*model.User, error) {
	defer logging.TraceDuration(a.log, "AuthUC.Register")()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := model.NewUser(username, hash)
	if err != nil {
		return nil, err
	}
	if err := a.users.Create(ctx, u); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			a.log.Error().Err(err).Str("user", logging.Redact(username, a.dev)).Msg("create user")
		}
		return nil, err
	}
	a.log.Info().Str("user", logging.Redact(username, a.dev)).Msg("user registered")
	return u, nil
}

func (a *authUC) Login(ctx context.Context, username, password string) (*model.User, error) {
	defer logging.TraceDuration(a.log, "AuthUC.Login")()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	u, err := a.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		a.log.Error().Err(err).Msg("find user")
		return nil, err
	}
	if !a.hasher.Verify(u.PasswordHash, password) {
		a.log.Info().Str("user", logging.Redact(username, a.dev)).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (a *authUC) Lookup(ctx context.Context, username string) (*model.User, error) {
	return a.users.FindByUsername(ctx, strings.TrimSpace(username))
}
