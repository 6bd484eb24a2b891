package auth

import (
	"context"
	"curio/curio/services/authstate"
	"curio/curio/types"
	"curio/curio/utils/logging"
	"sync"

	"go.uber.org/zap"
)

type Notifier interface {
	Info(text string)
	Error(text string)
}

type StatePublisher interface {
	Publish(authstate.State)
}

// Gateway is one client's view of the auth backend: it remembers the current
// session and publishes every presence change.
type Gateway struct {
	backend  Backend
	states   StatePublisher
	notifier Notifier

	mu      sync.Mutex
	current *Session
}

func NewGateway(backend Backend, states StatePublisher, notifier Notifier) *Gateway {
	return &Gateway{backend: backend, states: states, notifier: notifier}
}

func (g *Gateway) Current() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *Gateway) token() string {
	if s := g.Current(); s != nil {
		return s.Token
	}
	return ""
}

func (g *Gateway) SignUp(ctx context.Context, email, password string, meta Meta) types.Result {
	user, err := g.backend.SignUp(ctx, email, password, meta)
	if err != nil {
		return g.fail("sign_up", err)
	}
	return types.OK(user)
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) types.Result {
	s, err := g.backend.SignIn(ctx, email, password)
	if err != nil {
		return g.fail("sign_in", err)
	}
	g.setCurrent(s)
	return types.OK(s)
}

func (g *Gateway) SignOut(ctx context.Context) types.Result {
	if err := g.backend.SignOut(ctx, g.token()); err != nil {
		return g.fail("sign_out", err)
	}
	g.setCurrent(nil)
	return types.OK(nil)
}

// Restore adopts a token obtained elsewhere, e.g. over HTTP before the socket opened.
func (g *Gateway) Restore(ctx context.Context, token string) types.Result {
	s, err := g.backend.GetSession(ctx, token)
	if err != nil {
		return g.fail("restore", err)
	}
	g.setCurrent(s)
	return types.OK(s)
}

// GetAuthState re-validates the current session; a revoked one is dropped.
func (g *Gateway) GetAuthState(ctx context.Context) types.Result {
	s, err := g.backend.GetSession(ctx, g.token())
	if err != nil {
		g.setCurrent(nil)
		return g.fail("get_auth_state", err)
	}
	return types.OK(s)
}

func (g *Gateway) ResetPassword(ctx context.Context, email string) types.Result {
	if err := g.backend.ResetPassword(ctx, email); err != nil {
		return g.fail("reset_password", err)
	}
	return types.OK(nil)
}

func (g *Gateway) UpdatePassword(ctx context.Context, newPassword string) types.Result {
	token := g.token()
	if token == "" {
		return g.fail("update_password", ErrNotSignedIn)
	}
	if err := g.backend.UpdatePassword(ctx, token, newPassword); err != nil {
		return g.fail("update_password", err)
	}
	return types.OK(nil)
}

func (g *Gateway) setCurrent(s *Session) {
	g.mu.Lock()
	changed := g.current != s
	g.current = s
	g.mu.Unlock()
	if !changed {
		return
	}
	st := authstate.State{}
	if s != nil && s.User != nil {
		st = authstate.State{
			UserID:    s.User.ID,
			Email:     s.User.Email,
			SessionID: s.SessionID,
			ExpiresAt: s.ExpiresAt,
		}
	}
	g.states.Publish(st)
}

func (g *Gateway) fail(op string, err error) types.Result {
	logging.AppLogger.Info("auth operation failed", zap.String("op", op), zap.Error(err))
	g.notifier.Error(err.Error())
	return types.Fail(err)
}
