package model

import (
	"strings"
	"time"

	"page-summarizer/internal/domain"
)

// User is an account in the credential store. Username is the primary key.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func NewUser(username, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.Username == "" }
