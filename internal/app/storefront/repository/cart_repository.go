package repository

import (
	"context"
	"errors"
	"math"

	"lavka/internal/app/storefront/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository создает новый репозиторий корзин
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// AddItem добавляет товар в корзину
// Существующая строка (user, product) атомарно увеличивает qty через upsert,
// закрывая гонку "прочитал-обновил" при параллельных добавлениях
func (r *cartRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*entity.CartItem, error) {
	item := &entity.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Qty:       qty,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"qty": gorm.Expr("cart_items.qty + ?", qty),
			}),
		}).
		Create(item)

	if result.Error != nil {
		return nil, result.Error
	}

	// Перечитываем строку: при конфликте вставленный item содержит не тот ID и qty
	var saved entity.CartItem
	err := r.db.WithContext(ctx).
		First(&saved, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// GetLines получает позиции корзины вместе с живыми данными товаров
// Итог пересчитывается от текущих цен каталога, а не от цен на момент добавления
func (r *cartRepository) GetLines(ctx context.Context, userID uuid.UUID) ([]entity.CartLine, error) {
	var items []entity.CartItem
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at ASC").
		Find(&items)

	if result.Error != nil {
		return nil, result.Error
	}

	lines := make([]entity.CartLine, 0, len(items))
	for _, item := range items {
		var product entity.Product
		err := r.db.WithContext(ctx).First(&product, "id = ?", item.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Товар удалён из каталога, позиция корзины осталась - пропускаем
				continue
			}
			return nil, err
		}

		lines = append(lines, entity.CartLine{
			Item:     item,
			Product:  product,
			Subtotal: round2(product.Price * float64(item.Qty)),
		})
	}

	return lines, nil
}

// ChangeQty атомарно меняет количество на delta с нижней границей 1
// Неизвестный item id возвращает ErrCartItemNotFound
func (r *cartRepository) ChangeQty(ctx context.Context, itemID uuid.UUID, delta int) (*entity.CartItem, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("qty", gorm.Expr("GREATEST(qty + ?, 1)", delta))

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrCartItemNotFound
	}

	var item entity.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// Remove безусловно удаляет позицию корзины, отсутствие строки не ошибка
func (r *cartRepository) Remove(ctx context.Context, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.CartItem{}, "id = ?", itemID)
	return result.Error
}

// Clear удаляет все позиции корзины пользователя
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.CartItem{})

	return result.Error
}

// round2 округляет денежную сумму до двух знаков
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
