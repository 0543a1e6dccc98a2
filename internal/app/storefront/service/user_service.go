package service

import (
	"context"
	"errors"
	"fmt"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/repository"

	"github.com/google/uuid"
)

// UserService управляет покупателями, привязанными к чатам мессенджера
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// EnsureUser возвращает пользователя по chat_id, создавая его при первом обращении
// Повторные вызовы идемпотентны
func (s *UserService) EnsureUser(ctx context.Context, chatID int64) (*entity.User, error) {
	user, err := s.userRepo.GetOrCreate(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	return user, nil
}

// GetUser получает пользователя по внутреннему ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
