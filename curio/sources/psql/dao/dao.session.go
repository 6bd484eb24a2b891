package dao

import (
	"context"
	"curio/curio/sources/psql/models"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionDAO struct {
	DB *gorm.DB
}

func NewSessionDAO(db *gorm.DB) *SessionDAO {
	return &SessionDAO{DB: db}
}

func (dao *SessionDAO) CreateSession(ctx context.Context, userID int, expiresAt time.Time) (*models.Session, error) {
	s := models.Session{UserID: userID, ExpiresAt: expiresAt}
	if err := dao.DB.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession returns nil, nil when no such session was issued.
func (dao *SessionDAO) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	err := dao.DB.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (dao *SessionDAO) RevokeSession(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now().UTC()).Error
}

// RevokeAllForUser ends every open session of a user, e.g. after a password change.
func (dao *SessionDAO) RevokeAllForUser(ctx context.Context, userID int, except uuid.UUID) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ? AND id <> ? AND revoked_at IS NULL", userID, except).
		Update("revoked_at", time.Now().UTC()).Error
}
