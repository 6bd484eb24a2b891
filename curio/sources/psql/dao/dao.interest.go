package dao

import (
	"context"
	"curio/curio/sources/psql/models"
	"strings"

	"gorm.io/gorm"
)

type InterestDAO struct {
	DB *gorm.DB
}

func NewInterestDAO(db *gorm.DB) *InterestDAO {
	return &InterestDAO{DB: db}
}

// AddInterests skips blank entries and returns what was stored.
func (dao *InterestDAO) AddInterests(ctx context.Context, userID int, interests []string) ([]models.UserInterest, error) {
	rows := make([]models.UserInterest, 0, len(interests))
	for _, in := range interests {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		rows = append(rows, models.UserInterest{UserID: userID, Interest: in})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := dao.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (dao *InterestDAO) GetInterests(ctx context.Context, userID int) ([]models.UserInterest, error) {
	var rows []models.UserInterest
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type SimilarUser struct {
	UserID int `json:"user_id"`
	Shared int `json:"shared"`
}

// FindSimilarUsers ranks other users by the number of interests they share with userID.
func (dao *InterestDAO) FindSimilarUsers(ctx context.Context, userID int, limit int) ([]SimilarUser, error) {
	var out []SimilarUser
	err := dao.DB.WithContext(ctx).Raw(`
		SELECT other.user_id AS user_id, COUNT(*) AS shared
		FROM user_interests mine
		JOIN user_interests other
		  ON LOWER(other.interest) = LOWER(mine.interest) AND other.user_id <> mine.user_id
		WHERE mine.user_id = ?
		GROUP BY other.user_id
		ORDER BY shared DESC, other.user_id ASC
		LIMIT ?`, userID, limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
