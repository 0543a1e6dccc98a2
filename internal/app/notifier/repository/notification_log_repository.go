package repository

import (
	"context"
	"fmt"
	"time"

	"lavka/internal/app/notifier/entity"
	"lavka/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationLogRepository struct {
	collection *mongo.Collection
}

// NewNotificationLogRepository создает новый репозиторий журнала уведомлений
// Автоматически создает индекс по chat_id для выборки истории чата
func NewNotificationLogRepository(db *mongo.Database) NotificationLogRepository {
	collection := db.Collection("notifications")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "chat_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("chat_id_created_at_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("failed to create index on chat_id")
	}

	return &notificationLogRepository{
		collection: collection,
	}
}

// Create записывает результат доставки уведомления
func (r *notificationLogRepository) Create(ctx context.Context, record *entity.NotificationRecord) error {
	record.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}

	return nil
}

// ListByChat получает историю уведомлений чата, свежие первыми
func (r *notificationLogRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]entity.NotificationRecord, error) {
	filter := bson.M{"chat_id": chatID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notification records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.NotificationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode notification records: %w", err)
	}

	return records, nil
}

// CountByStatus считает уведомления с заданным статусом доставки
func (r *notificationLogRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count notification records: %w", err)
	}

	return count, nil
}
