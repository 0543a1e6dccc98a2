package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type cartMaintenanceRepository struct {
	db *gorm.DB
}

// NewCartMaintenanceRepository создает репозиторий обслуживания корзин
// Работает с таблицей cart_items базы Storefront Service
func NewCartMaintenanceRepository(db *gorm.DB) CartMaintenanceRepository {
	return &cartMaintenanceRepository{db: db}
}

// PurgeStale удаляет позиции корзин, не менявшиеся с olderThan
func (r *cartMaintenanceRepository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Exec("DELETE FROM cart_items WHERE updated_at < ?", olderThan)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge stale cart items: %w", result.Error)
	}

	return result.RowsAffected, nil
}
