package controllers

import (
	"context"
	"curio/curio/sources/psql/dao"
	"curio/curio/sources/psql/models"
	"curio/curio/sources/storage"
	"errors"
	"io"
)

var ErrUserNotFound = errors.New("user not found")

type UserController struct {
	users        *dao.UserDAO
	interests    *dao.InterestDAO
	interactions *dao.InteractionDAO
	store        storage.ObjectStore
}

func NewUserController(users *dao.UserDAO, interests *dao.InterestDAO, interactions *dao.InteractionDAO, store storage.ObjectStore) *UserController {
	return &UserController{users: users, interests: interests, interactions: interactions, store: store}
}

func (c *UserController) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := c.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (c *UserController) UpdateUser(ctx context.Context, id int, fullName, avatarURL *string) (*models.User, error) {
	user, err := c.users.UpdateProfile(ctx, id, fullName, avatarURL)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UploadAvatar stores the image and points the profile at it.
func (c *UserController) UploadAvatar(ctx context.Context, id int, filename, contentType string, r io.Reader, size int64) (*models.User, error) {
	url, err := c.store.UploadAvatar(ctx, id, filename, contentType, r, size)
	if err != nil {
		return nil, err
	}
	return c.UpdateUser(ctx, id, nil, &url)
}

func (c *UserController) AddInterests(ctx context.Context, id int, interests []string) ([]models.UserInterest, error) {
	return c.interests.AddInterests(ctx, id, interests)
}

func (c *UserController) GetInterests(ctx context.Context, id int) ([]models.UserInterest, error) {
	rows, err := c.interests.GetInterests(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.UserInterest{}
	}
	return rows, nil
}

type UserStats struct {
	TotalQuestions int                 `json:"total_questions"`
	Categories     []dao.CategoryCount `json:"categories"`
}

func (c *UserController) Stats(ctx context.Context, id int) (*UserStats, error) {
	counts, err := c.interactions.CountByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := &UserStats{Categories: counts}
	if stats.Categories == nil {
		stats.Categories = []dao.CategoryCount{}
	}
	for _, cc := range counts {
		stats.TotalQuestions += cc.Total
	}
	return stats, nil
}

func (c *UserController) Similar(ctx context.Context, id, limit int) ([]dao.SimilarUser, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	users, err := c.interests.FindSimilarUsers(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []dao.SimilarUser{}
	}
	return users, nil
}
