package repository

import (
	"context"
	"time"

	"lavka/internal/app/notifier/entity"
)

type NotificationLogRepository interface {
	Create(ctx context.Context, record *entity.NotificationRecord) error
	ListByChat(ctx context.Context, chatID int64, limit int) ([]entity.NotificationRecord, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type CartMaintenanceRepository interface {
	// PurgeStale удаляет позиции корзин, не менявшиеся дольше olderThan
	// Возвращает число удалённых позиций
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}
