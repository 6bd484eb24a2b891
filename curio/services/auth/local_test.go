package auth

import (
	"context"
	"curio/curio/config"
	"curio/curio/sources/psql/dao"
	"curio/curio/sources/psql/psqltest"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestBackend(t *testing.T) *LocalBackend {
	t.Helper()
	db := psqltest.NewTestDB(t)
	b := NewLocalBackend(config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour}, dao.NewUserDAO(db), dao.NewSessionDAO(db))
	b.cost = bcrypt.MinCost
	return b
}

func TestSignUpValidation(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if _, err := b.SignUp(ctx, "sem-arroba", "123456", Meta{}); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := b.SignUp(ctx, "ana@example.com", "12345", Meta{}); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	name := "Ana"
	user, err := b.SignUp(ctx, "ana@example.com", "segredo", Meta{FullName: &name})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.PasswordHash == "segredo" || user.FullName == nil || *user.FullName != "Ana" {
		t.Errorf("unexpected user %+v", user)
	}
	if _, err := b.SignUp(ctx, "ANA@example.com", "segredo", Meta{}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignInSessionLifecycle(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if _, err := b.SignUp(ctx, "ana@example.com", "segredo", Meta{}); err != nil {
		t.Fatal(err)
	}

	if _, err := b.SignIn(ctx, "ana@example.com", "errado"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := b.SignIn(ctx, "ninguem@example.com", "segredo"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	s, err := b.SignIn(ctx, "ana@example.com", "segredo")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	claims, err := ParseToken("test-secret", s.Token)
	if err != nil || claims.UserID != s.User.ID || claims.SessionID != s.SessionID {
		t.Fatalf("unexpected claims %+v / %v", claims, err)
	}
	if _, err := ParseToken("other-secret", s.Token); err == nil {
		t.Error("token must not verify with another secret")
	}

	got, err := b.GetSession(ctx, s.Token)
	if err != nil || got == nil || got.User.Email != "ana@example.com" {
		t.Fatalf("GetSession: %+v / %v", got, err)
	}
	none, err := b.GetSession(ctx, "")
	if err != nil || none != nil {
		t.Errorf("expected nil, nil for empty token, got %+v / %v", none, err)
	}

	if err := b.SignOut(ctx, s.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := b.GetSession(ctx, s.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("expected ErrSessionRevoked after sign out, got %v", err)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if _, err := b.SignUp(ctx, "ana@example.com", "segredo", Meta{}); err != nil {
		t.Fatal(err)
	}
	s, err := b.SignIn(ctx, "ana@example.com", "segredo")
	if err != nil {
		t.Fatal(err)
	}
	b.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := b.Authenticate(ctx, s.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestUpdatePasswordRevokesOtherSessions(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if _, err := b.SignUp(ctx, "ana@example.com", "segredo", Meta{}); err != nil {
		t.Fatal(err)
	}
	phone, _ := b.SignIn(ctx, "ana@example.com", "segredo")
	laptop, _ := b.SignIn(ctx, "ana@example.com", "segredo")

	if err := b.UpdatePassword(ctx, laptop.Token, "nova-senha"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := b.Authenticate(ctx, laptop.Token); err != nil {
		t.Errorf("current session should survive, got %v", err)
	}
	if _, err := b.Authenticate(ctx, phone.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("other session should be revoked, got %v", err)
	}
	if _, err := b.SignIn(ctx, "ana@example.com", "nova-senha"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestResetTokenUpdatesPassword(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if _, err := b.SignUp(ctx, "ana@example.com", "segredo", Meta{}); err != nil {
		t.Fatal(err)
	}

	token, _, err := b.IssueResetToken(ctx, "ana@example.com")
	if err != nil || token == "" {
		t.Fatalf("IssueResetToken: %q / %v", token, err)
	}
	if _, err := b.Authenticate(ctx, token); err == nil {
		t.Error("reset token must not authenticate requests")
	}
	if err := b.UpdatePassword(ctx, token, "recuperada"); err != nil {
		t.Fatalf("UpdatePassword with reset token: %v", err)
	}
	if _, err := b.SignIn(ctx, "ana@example.com", "recuperada"); err != nil {
		t.Errorf("sign in with reset password: %v", err)
	}

	unknown, _, err := b.IssueResetToken(ctx, "ninguem@example.com")
	if err != nil || unknown != "" {
		t.Errorf("expected silent success for unknown email, got %q / %v", unknown, err)
	}
	if err := b.ResetPassword(ctx, "invalido"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}
