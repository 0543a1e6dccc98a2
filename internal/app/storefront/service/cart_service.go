package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/repository"
	"lavka/pkg/metrics"

	"github.com/google/uuid"
)

// CartService обрабатывает бизнес-логику корзины покупателя
// Все мутации выполняются атомарно на уровне репозитория
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService создает новый сервис корзины
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddToCart добавляет товар в корзину пользователя
// Повторное добавление того же товара увеличивает количество существующей позиции
func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, qty int) (*entity.CartItem, error) {
	if qty <= 0 {
		qty = 1
	}

	// Проверяем существование товара перед добавлением
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to verify product: %w", err)
	}

	item, err := s.cartRepo.AddItem(ctx, userID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	metrics.CartItemsAdded.Add(float64(qty))

	return item, nil
}

// GetCart собирает корзину пользователя по живым ценам каталога
// Итог пересчитывается при каждом чтении: позиции удалённых товаров пропадают,
// изменённые цены отражаются сразу
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	lines, err := s.cartRepo.GetLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}

	var total float64
	for _, line := range lines {
		total += line.Subtotal
	}

	return &entity.Cart{
		Items: lines,
		Total: math.Round(total*100) / 100,
	}, nil
}

// ChangeQty изменяет количество позиции на delta (+1 / -1)
// Количество не опускается ниже 1: уменьшение единственной единицы игнорируется
func (s *CartService) ChangeQty(ctx context.Context, itemID uuid.UUID, delta int) (*entity.CartItem, error) {
	item, err := s.cartRepo.ChangeQty(ctx, itemID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to change cart item qty: %w", err)
	}

	return item, nil
}

// RemoveItem удаляет позицию из корзины
// Удаление несуществующей позиции не является ошибкой
func (s *CartService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	if err := s.cartRepo.Remove(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// ClearCart полностью очищает корзину пользователя
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
