package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/infrastructure"
	"lavka/internal/app/storefront/repository"
	"lavka/pkg/logger"
	"lavka/pkg/metrics"

	"github.com/google/uuid"
)

// orderNumberAttempts ограничивает перебор при коллизии номера заказа
const orderNumberAttempts = 5

// OrderService обрабатывает жизненный цикл заказов:
// создание из корзины, смену статусов и выборки для админки
type OrderService struct {
	orderRepo     repository.OrderRepository
	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository
	kafkaProducer infrastructure.MessagePublisher
	numberPrefix  string
}

// NewOrderService создает новый сервис заказов
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	kafkaProducer infrastructure.MessagePublisher,
	numberPrefix string,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		userRepo:      userRepo,
		productRepo:   productRepo,
		kafkaProducer: kafkaProducer,
		numberPrefix:  numberPrefix,
	}
}

// CreateOrder превращает корзину пользователя в заказ
// Корзина читается, снимается в позиции и очищается в одной транзакции,
// при коллизии номера заказа транзакция повторяется с новым номером
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID) (*entity.Order, error) {
	var order *entity.Order

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number, err := s.generateOrderNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order number: %w", err)
		}

		order, err = s.orderRepo.CreateFromCart(ctx, userID, number)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrCartEmpty) {
			return nil, ErrEmptyCart
		}
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			logger.Warn().Str("order_number", number).Msg("order number collision, retrying")
			order = nil
			continue
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if order == nil {
		return nil, ErrOrderNumberConflict
	}

	metrics.OrdersCreated.Inc()
	metrics.OrdersTotalAmount.Add(order.Total)

	// Уведомление о заказе не должно ломать оформление:
	// заказ уже создан, ошибки Kafka только логируем
	if err := s.publishOrderEvent(ctx, "ORDER_CREATED", order); err != nil {
		logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to publish order created event")
	}

	return order, nil
}

// GetOrder получает заказ без позиций
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetOrderDetails собирает заказ с позициями и владельцем для отображения
// Названия позиций берутся из живого каталога; для удалённого товара
// остаётся название из снимка заказа
func (s *OrderService) GetOrderDetails(ctx context.Context, id uuid.UUID) (*entity.OrderDetails, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order with items: %w", err)
	}

	details := &entity.OrderDetails{
		Order: *order,
		Items: make([]entity.OrderDetailItem, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		name := item.Name
		if product, err := s.productRepo.GetByID(ctx, item.ProductID); err == nil {
			name = product.Name
		}
		details.Items = append(details.Items, entity.OrderDetailItem{
			Name:  name,
			Qty:   item.Qty,
			Price: item.Price,
		})
	}

	if user, err := s.userRepo.GetByID(ctx, order.UserID); err == nil {
		details.User = user
	}

	return details, nil
}

// SetOrderStatus безусловно устанавливает новый статус заказа
// Допустим любой статус из фиксированного набора, включая повторную
// установку текущего
func (s *OrderService) SetOrderStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()

	if err := s.publishOrderEvent(ctx, "ORDER_STATUS_CHANGED", order); err != nil {
		logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to publish order status event")
	}

	return order, nil
}

// ListOrdersByStatus возвращает последние заказы с заданным статусом
// Пустой статус или "all" снимает фильтр
func (s *OrderService) ListOrdersByStatus(ctx context.Context, status string, limit int) ([]entity.Order, error) {
	if status != "" && status != "all" && !entity.OrderStatus(status).Valid() {
		return nil, ErrInvalidStatus
	}

	orders, err := s.orderRepo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// ListOrdersSince возвращает заказы, созданные за последние days дней
func (s *OrderService) ListOrdersSince(ctx context.Context, days int) ([]entity.Order, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	orders, err := s.orderRepo.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders since %s: %w", since.Format("2006-01-02"), err)
	}

	return orders, nil
}

// generateOrderNumber собирает человекочитаемый номер заказа
// Формат: <префикс>-<ГГММДД по UTC>-<4 hex символа в верхнем регистре>
func (s *OrderService) generateOrderNumber() (string, error) {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s",
		s.numberPrefix,
		time.Now().UTC().Format("060102"),
		strings.ToUpper(hex.EncodeToString(suffix)),
	), nil
}

// publishOrderEvent отправляет событие заказа в Kafka
// Key - это OrderID для правильного партиционирования
func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, order *entity.Order) error {
	event := entity.OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Status:      order.Status,
		ItemsCount:  len(order.Items),
		Timestamp:   time.Now(),
	}

	// ChatID нужен notifier-у чтобы написать покупателю
	if user, err := s.userRepo.GetByID(ctx, order.UserID); err == nil {
		event.ChatID = user.ChatID
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.OrderID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
