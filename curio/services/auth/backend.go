package auth

import (
	"context"
	"curio/curio/sources/psql/models"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("user already registered")
	ErrInvalidEmail       = errors.New("unable to validate email address: invalid format")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrSessionRevoked     = errors.New("session expired or revoked")
	ErrNotSignedIn        = errors.New("auth session missing")
)

const MinPasswordLength = 6

// Meta carries optional profile data collected at sign-up.
type Meta struct {
	FullName *string
}

// Session is an issued login: the bearer token plus what it identifies.
type Session struct {
	Token     string       `json:"access_token"`
	SessionID string       `json:"session_id"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Backend is the external authentication service.
type Backend interface {
	SignUp(ctx context.Context, email, password string, meta Meta) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	// GetSession returns nil, nil for an empty token.
	GetSession(ctx context.Context, token string) (*Session, error)
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, token, newPassword string) error
}
