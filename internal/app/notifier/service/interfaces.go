package service

import (
	"context"

	"lavka/internal/app/notifier/entity"
)

// NotificationServiceInterface определяет интерфейс обработки событий заказов
type NotificationServiceInterface interface {
	// ProcessOrderEvent обрабатывает событие заказа из Kafka
	ProcessOrderEvent(ctx context.Context, event *entity.OrderEvent) error
}

// CartJanitorInterface определяет интерфейс чистки брошенных корзин
type CartJanitorInterface interface {
	// PurgeStaleCarts удаляет залежавшиеся позиции корзин
	PurgeStaleCarts(ctx context.Context) (int64, error)
}

// Messenger определяет интерфейс отправки сообщений в чаты
// Реализация log-based используется пока шлюз мессенджера не подключён
type Messenger interface {
	// SendMessage отправляет текст в чат
	SendMessage(ctx context.Context, chatID int64, text string) error
}
