package util

import (
	"context"
	"time"

	"lavka/internal/app/storefront/entity"
)

// CategoryCache - кеш списка категорий
// Каталог читается намного чаще, чем меняется, поэтому список категорий
// живёт в Redis и инвалидируется при любой записи
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]entity.Category, error)
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	DeleteCategories(ctx context.Context) error
}
