package repository

import (
	"context"
	"errors"
	"time"

	"lavka/internal/app/storefront/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNumberTaken = errors.New("order number already taken")
	ErrSessionNotFound  = errors.New("session not found")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context, limit int) ([]entity.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	ListWithoutImage(ctx context.Context) ([]entity.Product, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*entity.Product, error)
	SetImageFileID(ctx context.Context, id uuid.UUID, fileID string) (*entity.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	GetOrCreate(ctx context.Context, chatID int64) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateDetails(ctx context.Context, chatID int64, name, phone, address string) (*entity.User, error)
}

type CartRepository interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*entity.CartItem, error)
	GetLines(ctx context.Context, userID uuid.UUID) ([]entity.CartLine, error)
	ChangeQty(ctx context.Context, itemID uuid.UUID, delta int) (*entity.CartItem, error)
	Remove(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type OrderRepository interface {
	// CreateFromCart атомарно превращает корзину пользователя в заказ:
	// читает корзину, фиксирует позиции, создаёт заказ и очищает корзину
	// в одной транзакции
	CreateFromCart(ctx context.Context, userID uuid.UUID, orderNumber string) (*entity.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*entity.Order, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]entity.Order, error)
	ListSince(ctx context.Context, since time.Time) ([]entity.Order, error)
}

type ExportRepository interface {
	// FlatRows возвращает заказы за период плоскими строками для CSV выгрузки
	FlatRows(ctx context.Context, since time.Time) ([]entity.ExportRow, error)
}

type SessionRepository interface {
	SaveCheckout(ctx context.Context, session *entity.CheckoutSession) error
	GetCheckout(ctx context.Context, chatID int64) (*entity.CheckoutSession, error)
	DeleteCheckout(ctx context.Context, chatID int64) error
	SaveAdmin(ctx context.Context, session *entity.AdminSession) error
	GetAdmin(ctx context.Context, chatID int64) (*entity.AdminSession, error)
	DeleteAdmin(ctx context.Context, chatID int64) error
}
