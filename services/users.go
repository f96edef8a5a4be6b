package services

import (
	"context"
	"database/sql"
	"errors"

	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/models"
)

type UserStore interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, username, profileImageURL *string) (models.User, error)
	UpsertDeviceToken(ctx context.Context, userID, token string) error
}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Me(ctx context.Context, userID string) (models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperror.NotFound("User not found")
	}
	return u, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, username, profileImageURL *string) (models.User, error) {
	u, err := s.store.UpdateProfile(ctx, userID, username, profileImageURL)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.User{}, apperror.NotFound("User not found")
	case apperror.IsUniqueViolation(err):
		return models.User{}, apperror.Conflict("Username already exists")
	}
	return u, err
}

func (s *UserService) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	return s.store.UpsertDeviceToken(ctx, userID, token)
}
