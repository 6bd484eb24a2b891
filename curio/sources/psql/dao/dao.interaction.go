package dao

import (
	"context"
	"curio/curio/sources/psql/models"
	"time"

	"gorm.io/gorm"
)

type InteractionDAO struct {
	DB *gorm.DB
}

func NewInteractionDAO(db *gorm.DB) *InteractionDAO {
	return &InteractionDAO{DB: db}
}

// SaveInteraction stores a question and its answer in one transaction.
func (dao *InteractionDAO) SaveInteraction(ctx context.Context, userID int, question, category, response, provider string) (*models.UserQuestion, error) {
	now := time.Now().UTC()
	q := models.UserQuestion{
		UserID:    userID,
		Question:  question,
		Category:  category,
		CreatedAt: now,
	}
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		r := models.AIResponse{
			QuestionID: q.ID,
			Response:   response,
			Provider:   provider,
			CreatedAt:  now,
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		q.Responses = []models.AIResponse{r}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetHistory returns the user's latest limit questions, oldest first, with their responses.
func (dao *InteractionDAO) GetHistory(ctx context.Context, userID int, limit int) ([]models.UserQuestion, error) {
	var questions []models.UserQuestion
	q := dao.DB.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&questions).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(questions)-1; i < j; i, j = i+1, j-1 {
		questions[i], questions[j] = questions[j], questions[i]
	}
	return questions, nil
}

type CategoryCount struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// CountByCategory returns per-category question counts, most frequent first.
func (dao *InteractionDAO) CountByCategory(ctx context.Context, userID int) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := dao.DB.WithContext(ctx).
		Model(&models.UserQuestion{}).
		Select("category, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("category").
		Order("total DESC, category ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
