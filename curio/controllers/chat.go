package controllers

import (
	"context"
	"curio/curio/services/ai"
	"curio/curio/sources/psql/models"
	"errors"
	"strings"
)

var ErrEmptyQuestion = errors.New("question is required")

type ChatController struct {
	ai *ai.Orchestrator
}

func NewChatController(orchestrator *ai.Orchestrator) *ChatController {
	return &ChatController{ai: orchestrator}
}

func (c *ChatController) Ask(ctx context.Context, userID int, question, provider string) (*ai.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	return c.ai.Ask(ctx, userID, question, provider)
}

func (c *ChatController) History(ctx context.Context, userID, limit int) ([]models.UserQuestion, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	questions, err := c.ai.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []models.UserQuestion{}
	}
	return questions, nil
}

func (c *ChatController) Suggestions(ctx context.Context, userID int) []string {
	return c.ai.Suggestions(ctx, userID)
}

// RetryHint is shown next to failed answers.
func (c *ChatController) RetryHint() string {
	return c.ai.Topics().Messages.RetryHint
}
