package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateUserRequest struct {
	Email string
	Name  string
}

type Service interface {
	Register(ctx context.Context, req CreateUserRequest) (*User, error)
	Get(ctx context.Context, id snowflake.ID) (*User, error)
	// Authenticate resolves the caller identity from its raw id.
	Authenticate(ctx context.Context, rawID string) (*User, error)
}

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidName     = errors.New("invalid_name")
	ErrEmailTaken      = errors.New("email_taken")
	ErrUserNotFound    = errors.New("user_not_found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnknownUser     = errors.New("unknown_user")
)
