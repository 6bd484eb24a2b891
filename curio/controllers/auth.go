package controllers

import (
	"context"
	"curio/curio/services/auth"
	"curio/curio/sources/psql/models"
)

type AuthController struct {
	backend auth.Backend
}

func NewAuthController(backend auth.Backend) *AuthController {
	return &AuthController{backend: backend}
}

// SignUp registers the user and signs them in right away.
func (c *AuthController) SignUp(ctx context.Context, email, password string, fullName *string) (*auth.Session, error) {
	if _, err := c.backend.SignUp(ctx, email, password, auth.Meta{FullName: fullName}); err != nil {
		return nil, err
	}
	return c.backend.SignIn(ctx, email, password)
}

func (c *AuthController) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	return c.backend.SignIn(ctx, email, password)
}

func (c *AuthController) Logout(ctx context.Context, token string) error {
	return c.backend.SignOut(ctx, token)
}

func (c *AuthController) Session(ctx context.Context, token string) (*models.User, error) {
	s, err := c.backend.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, auth.ErrNotSignedIn
	}
	return s.User, nil
}

func (c *AuthController) ResetPassword(ctx context.Context, email string) error {
	return c.backend.ResetPassword(ctx, email)
}

func (c *AuthController) UpdatePassword(ctx context.Context, token, password string) error {
	return c.backend.UpdatePassword(ctx, token, password)
}
