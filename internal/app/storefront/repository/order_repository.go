package repository

import (
	"context"
	"errors"
	"time"

	"lavka/internal/app/storefront/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateFromCart атомарно превращает корзину в заказ
// Чтение корзины, расчёт итога, снимок позиций и очистка корзины выполняются
// в одной транзакции: параллельная правка цены не может разойтись между
// итогом заказа и ценами позиций
func (r *orderRepository) CreateFromCart(ctx context.Context, userID uuid.UUID, orderNumber string) (*entity.Order, error) {
	order := &entity.Order{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		UserID:      userID,
		Status:      entity.OrderStatusNew,
		CreatedAt:   time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []entity.CartItem
		if err := tx.Where("user_id = ?", userID).Order("updated_at ASC").Find(&items).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return ErrCartEmpty
		}

		var total float64
		orderItems := make([]entity.OrderItem, 0, len(items))

		for _, item := range items {
			var product entity.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Товар удалён, позиция корзины осталась - не попадает в заказ
					continue
				}
				return err
			}

			orderItems = append(orderItems, entity.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: product.ID,
				Name:      product.Name,
				Qty:       item.Qty,
				Price:     product.Price,
			})
			total += product.Price * float64(item.Qty)
		}

		if len(orderItems) == 0 {
			return ErrCartEmpty
		}

		order.Total = round2(total)

		if err := tx.Create(order).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return ErrOrderNumberTaken
			}
			return err
		}

		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&entity.CartItem{}).Error; err != nil {
			return err
		}

		order.Items = orderItems
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetByID получает заказ по ID
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetWithItems получает заказ с полным списком позиций
func (r *orderRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// UpdateStatus безусловно перезаписывает статус заказа
// Граф переходов не проверяется: любой статус достижим из любого
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}

	return r.GetByID(ctx, id)
}

// ListByStatus получает последние заказы с фильтром по статусу
// Пустой статус или "all" возвращает все
func (r *orderRepository) ListByStatus(ctx context.Context, status string, limit int) ([]entity.Order, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var orders []entity.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// ListSince получает заказы созданные не раньше указанного момента
func (r *orderRepository) ListSince(ctx context.Context, since time.Time) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}
