package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderEvent - событие заказа из Kafka топика order_events
// Формат совпадает с тем, что публикует Storefront Service
type OrderEvent struct {
	EventType   string    `json:"event_type"` // ORDER_CREATED, ORDER_STATUS_CHANGED
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	ChatID      int64     `json:"chat_id"`
	Total       float64   `json:"total"`
	Status      string    `json:"status"`
	ItemsCount  int       `json:"items_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// Статусы доставки уведомления
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Виды уведомлений
const (
	NotificationKindCustomer = "customer"
	NotificationKindAdmin    = "admin"
)

// NotificationRecord - запись журнала доставки уведомлений в MongoDB
// Журнал нужен для разбора жалоб "мне не пришло сообщение о заказе"
type NotificationRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID      int64              `bson:"chat_id" json:"chat_id"`
	Kind        string             `bson:"kind" json:"kind"` // customer или admin
	OrderNumber string             `bson:"order_number" json:"order_number"`
	EventType   string             `bson:"event_type" json:"event_type"`
	Text        string             `bson:"text" json:"text"`
	Status      string             `bson:"status" json:"status"` // sent или failed
	Error       string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
