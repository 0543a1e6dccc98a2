package repository

import (
	"context"
	"errors"

	"lavka/internal/app/storefront/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetOrCreate лениво создает пользователя по внешнему chat id
// Повторные вызовы идемпотентны: upsert ON CONFLICT DO NOTHING плюс выборка
func (r *userRepository) GetOrCreate(ctx context.Context, chatID int64) (*entity.User, error) {
	user := &entity.User{
		ID:     uuid.New(),
		ChatID: chatID,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoNothing: true,
		}).
		Create(user)

	if result.Error != nil {
		return nil, result.Error
	}

	// При конфликте вставка ничего не меняет, читаем существующую запись
	var existing entity.User
	if err := r.db.WithContext(ctx).First(&existing, "chat_id = ?", chatID).Error; err != nil {
		return nil, err
	}

	return &existing, nil
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// UpdateDetails сохраняет контактные данные, собранные диалогом оформления заказа
func (r *userRepository) UpdateDetails(ctx context.Context, chatID int64, name, phone, address string) (*entity.User, error) {
	user, err := r.GetOrCreate(ctx, chatID)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Model(user).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":    name,
			"phone":   phone,
			"address": address,
		})

	if result.Error != nil {
		return nil, result.Error
	}

	user.Name = name
	user.Phone = phone
	user.Address = address

	return user, nil
}
