package auth

import (
	"context"
	"curio/curio/config"
	"curio/curio/sources/psql/dao"
	"curio/curio/sources/psql/models"
	"curio/curio/utils/logging"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	purposeAccess = ""
	purposeReset  = "reset"

	resetTTL = time.Hour
)

// Claims are carried by every token LocalBackend issues.
type Claims struct {
	UserID    int    `json:"user_id"`
	SessionID string `json:"sid,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token signed with secret.
func ParseToken(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserID == 0 {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// LocalBackend implements Backend over the users and sessions tables.
type LocalBackend struct {
	users    *dao.UserDAO
	sessions *dao.SessionDAO
	secret   string
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

func NewLocalBackend(cfg config.Config, users *dao.UserDAO, sessions *dao.SessionDAO) *LocalBackend {
	if cfg.JWTSecret == "" {
		logging.AppLogger.Warn("JWT_SECRET is empty; tokens are signed with an empty key")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LocalBackend{
		users:    users,
		sessions: sessions,
		secret:   cfg.JWTSecret,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func validateCredentials(email, password string) error {
	if !strings.Contains(strings.TrimSpace(email), "@") {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func (b *LocalBackend) SignUp(ctx context.Context, email, password string, meta Meta) (*models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	existing, err := b.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	user, err := b.users.CreateUser(ctx, email, string(hash), meta.FullName)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	logging.AppLogger.Info("user registered", zap.Int("user_id", user.ID))
	return user, nil
}

func (b *LocalBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := b.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	expiresAt := b.now().Add(b.ttl).UTC()
	row, err := b.sessions.CreateSession(ctx, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	token, err := b.sign(Claims{UserID: user.ID, SessionID: row.ID.String()}, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return &Session{Token: token, SessionID: row.ID.String(), ExpiresAt: expiresAt, User: user}, nil
}

func (b *LocalBackend) SignOut(ctx context.Context, token string) error {
	claims, err := b.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	sid, _ := uuid.Parse(claims.SessionID)
	if err := b.sessions.RevokeSession(ctx, sid); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (b *LocalBackend) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := b.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := b.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if user == nil {
		return nil, ErrSessionRevoked
	}
	return &Session{
		Token:     token,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// Authenticate checks an access token against its sessions row.
func (b *LocalBackend) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNotSignedIn
	}
	claims, err := ParseToken(b.secret, token)
	if err != nil || claims.Purpose != purposeAccess {
		return nil, ErrSessionRevoked
	}
	sid, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, ErrSessionRevoked
	}
	row, err := b.sessions.GetSession(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if row == nil || row.UserID != claims.UserID || !row.Active(b.now()) {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// ResetPassword issues a one-hour reset token. Delivery is out of band: the token is only logged.
// Unknown addresses succeed silently.
func (b *LocalBackend) ResetPassword(ctx context.Context, email string) error {
	token, userID, err := b.IssueResetToken(ctx, email)
	if err != nil {
		return err
	}
	if token == "" {
		logging.AppLogger.Info("password reset requested for unknown email")
		return nil
	}
	logging.AppLogger.Info("password reset token issued",
		zap.Int("user_id", userID),
		zap.String("reset_token", token),
	)
	return nil
}

// IssueResetToken returns an empty token when no user has that email.
func (b *LocalBackend) IssueResetToken(ctx context.Context, email string) (string, int, error) {
	if !strings.Contains(email, "@") {
		return "", 0, ErrInvalidEmail
	}
	user, err := b.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", 0, fmt.Errorf("reset password: %w", err)
	}
	if user == nil {
		return "", 0, nil
	}
	token, err := b.sign(Claims{UserID: user.ID, Purpose: purposeReset}, b.now().Add(resetTTL))
	if err != nil {
		return "", 0, fmt.Errorf("reset password: %w", err)
	}
	return token, user.ID, nil
}

// UpdatePassword accepts an access token or a reset token.
// Every other session of the user is revoked.
func (b *LocalBackend) UpdatePassword(ctx context.Context, token, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	claims, err := ParseToken(b.secret, token)
	if err != nil {
		return ErrNotSignedIn
	}
	keep := uuid.Nil
	switch claims.Purpose {
	case purposeReset:
	case purposeAccess:
		if claims, err = b.Authenticate(ctx, token); err != nil {
			return err
		}
		keep, _ = uuid.Parse(claims.SessionID)
	default:
		return ErrNotSignedIn
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), b.cost)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := b.users.UpdatePassword(ctx, claims.UserID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := b.sessions.RevokeAllForUser(ctx, claims.UserID, keep); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (b *LocalBackend) sign(c Claims, expiresAt time.Time) (string, error) {
	c.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(b.now()),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(b.secret))
}

// IsAuthError reports whether err should be answered as an authentication failure rather than a server fault.
func IsAuthError(err error) bool {
	for _, target := range []error{ErrInvalidCredentials, ErrEmailTaken, ErrInvalidEmail, ErrWeakPassword, ErrSessionRevoked, ErrNotSignedIn} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
