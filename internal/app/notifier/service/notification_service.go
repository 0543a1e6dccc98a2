package service

import (
	"context"
	"fmt"

	"lavka/internal/app/notifier/entity"
	"lavka/internal/app/notifier/repository"
	"lavka/pkg/logger"
	"lavka/pkg/metrics"
)

// NotificationService рассылает уведомления по событиям заказов
// Сбой отправки не считается ошибкой обработки события: жизненный цикл
// заказа не должен зависеть от доступности мессенджера. Каждая попытка
// фиксируется в журнале доставки
type NotificationService struct {
	messenger    Messenger
	logRepo      repository.NotificationLogRepository
	adminChatIDs []int64
}

// NewNotificationService создает новый сервис уведомлений
func NewNotificationService(
	messenger Messenger,
	logRepo repository.NotificationLogRepository,
	adminChatIDs []int64,
) *NotificationService {
	return &NotificationService{
		messenger:    messenger,
		logRepo:      logRepo,
		adminChatIDs: adminChatIDs,
	}
}

// ProcessOrderEvent обрабатывает событие заказа из Kafka
func (s *NotificationService) ProcessOrderEvent(ctx context.Context, event *entity.OrderEvent) error {
	switch event.EventType {
	case "ORDER_CREATED":
		s.notifyCustomer(ctx, event, fmt.Sprintf(
			"Order %s accepted! Total: %.2f. We will contact you shortly.",
			event.OrderNumber, event.Total,
		))
		s.notifyAdmins(ctx, event, fmt.Sprintf(
			"New order %s: %d item(s), total %.2f",
			event.OrderNumber, event.ItemsCount, event.Total,
		))
	case "ORDER_STATUS_CHANGED":
		s.notifyCustomer(ctx, event, statusMessage(event))
	default:
		logger.Warn().
			Str("event_type", event.EventType).
			Str("order_number", event.OrderNumber).
			Msg("Unknown event type, skipping")
	}

	return nil
}

// notifyCustomer отправляет сообщение покупателю
// ChatID может отсутствовать в старых событиях, тогда отправлять некуда
func (s *NotificationService) notifyCustomer(ctx context.Context, event *entity.OrderEvent, text string) {
	if event.ChatID == 0 {
		logger.Warn().
			Str("order_number", event.OrderNumber).
			Msg("Event has no chat_id, skipping customer notification")
		return
	}

	s.send(ctx, event, entity.NotificationKindCustomer, event.ChatID, text)
}

// notifyAdmins отправляет сообщение во все админские чаты
func (s *NotificationService) notifyAdmins(ctx context.Context, event *entity.OrderEvent, text string) {
	for _, chatID := range s.adminChatIDs {
		s.send(ctx, event, entity.NotificationKindAdmin, chatID, text)
	}
}

// send выполняет одну попытку доставки и фиксирует результат в журнале
func (s *NotificationService) send(ctx context.Context, event *entity.OrderEvent, kind string, chatID int64, text string) {
	record := &entity.NotificationRecord{
		ChatID:      chatID,
		Kind:        kind,
		OrderNumber: event.OrderNumber,
		EventType:   event.EventType,
		Text:        text,
		Status:      entity.DeliveryStatusSent,
	}

	if err := s.messenger.SendMessage(ctx, chatID, text); err != nil {
		record.Status = entity.DeliveryStatusFailed
		record.Error = err.Error()
		logger.Warn().
			Err(err).
			Int64("chat_id", chatID).
			Str("order_number", event.OrderNumber).
			Msg("Failed to deliver notification")
	}

	metrics.NotificationsSent.WithLabelValues(kind, record.Status).Inc()

	if err := s.logRepo.Create(ctx, record); err != nil {
		// Журнал вторичен, доставка важнее
		logger.Warn().Err(err).Msg("Failed to write notification record")
	}
}

// statusMessage подбирает текст уведомления о смене статуса
func statusMessage(event *entity.OrderEvent) string {
	switch event.Status {
	case "paid":
		return fmt.Sprintf("Order %s: payment received. We are preparing your order.", event.OrderNumber)
	case "shipped":
		return fmt.Sprintf("Order %s is on its way!", event.OrderNumber)
	case "done":
		return fmt.Sprintf("Order %s is completed. Thank you for shopping with us!", event.OrderNumber)
	default:
		return fmt.Sprintf("Order %s status changed to %s.", event.OrderNumber, event.Status)
	}
}
