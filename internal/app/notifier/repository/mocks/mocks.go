// Package mocks содержит моки репозиториев для unit тестов
package mocks

import (
	"context"
	"time"

	"lavka/internal/app/notifier/entity"

	"github.com/stretchr/testify/mock"
)

// MockNotificationLogRepository мок для NotificationLogRepository
type MockNotificationLogRepository struct {
	mock.Mock
}

func (m *MockNotificationLogRepository) Create(ctx context.Context, record *entity.NotificationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockNotificationLogRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]entity.NotificationRecord, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.NotificationRecord), args.Error(1)
}

func (m *MockNotificationLogRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartMaintenanceRepository мок для CartMaintenanceRepository
type MockCartMaintenanceRepository struct {
	mock.Mock
}

func (m *MockCartMaintenanceRepository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
