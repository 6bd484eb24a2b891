package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserQuestion is the question half of an interaction record. IDs are UUIDv7,
// so they sort in insertion order and break created_at ties.
type UserQuestion struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int          `json:"user_id" gorm:"not null;index"`
	User      User         `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Question  string       `json:"question" gorm:"type:text;not null"`
	Category  string       `json:"category" gorm:"type:varchar(50);not null;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;index"`
	Responses []AIResponse `json:"responses" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (UserQuestion) TableName() string {
	return "user_questions"
}

func (q *UserQuestion) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.Must(uuid.NewV7())
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	return nil
}

type AIResponse struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Response   string    `json:"response" gorm:"type:text;not null"`
	Provider   string    `json:"provider" gorm:"type:varchar(50);not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
}

func (AIResponse) TableName() string {
	return "ai_responses"
}

func (r *AIResponse) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.Must(uuid.NewV7())
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
