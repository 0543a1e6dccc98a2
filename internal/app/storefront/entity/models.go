package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category представляет категорию товаров
// Удаление категории каскадно удаляет её товары
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	Products  []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Category) TableName() string {
	return "categories"
}

// Product представляет товар витрины
// Изображение хранится либо как внешний URL, либо как file_id платформы (предпочтительно)
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(150);not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null;check:price >= 0"`
	ImageURL    string    `json:"image_url" gorm:"type:text"`
	ImageFileID string    `json:"image_file_id" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string {
	return "products"
}

// User представляет покупателя, идентифицируемого внешним chat id
// Создаётся лениво при первом обращении, контактные данные заполняются при оформлении заказа
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChatID    int64     `json:"chat_id" gorm:"not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Phone     string    `json:"phone" gorm:"type:varchar(30)"`
	Address   string    `json:"address" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// CartItem представляет позицию корзины
// Одна строка на пару (user, product), приращение количества через upsert
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Qty       int       `json:"qty" gorm:"not null;default:1;check:qty >= 1"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Order представляет заказ
// После создания изменяется только статус
type Order struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber string      `json:"order_number" gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Total       float64     `json:"total" gorm:"type:decimal(10,2);not null"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(30);not null;default:'new'"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
	Items       []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderStatus представляет статусы заказа
// Порядок new -> paid -> shipped -> done - соглашение интерфейса,
// хранилище допускает любой переход
type OrderStatus string

const (
	OrderStatusNew     OrderStatus = "new"     // Новый заказ
	OrderStatusPaid    OrderStatus = "paid"    // Оплачен
	OrderStatusShipped OrderStatus = "shipped" // Отправлен
	OrderStatusDone    OrderStatus = "done"    // Завершён
)

// KnownOrderStatuses - допустимые значения статуса
var KnownOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDone,
}

// Valid проверяет, что статус входит в фиксированный набор
func (s OrderStatus) Valid() bool {
	for _, known := range KnownOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderItem представляет позицию заказа
// Имя и цена зафиксированы на момент создания заказа и не зависят
// от последующих правок каталога
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"type:varchar(150);not null"`
	Qty       int       `json:"qty" gorm:"not null;check:qty > 0"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Cart содержит позиции корзины с живыми данными товаров и пересчитанным итогом
type Cart struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// CartLine - позиция корзины, обогащённая текущими данными товара
type CartLine struct {
	Item     CartItem `json:"item"`
	Product  Product  `json:"product"`
	Subtotal float64  `json:"subtotal"`
}

// OrderDetails - заказ с позициями и владельцем для отображения
type OrderDetails struct {
	Order Order             `json:"order"`
	Items []OrderDetailItem `json:"items"`
	User  *User             `json:"user,omitempty"`
}

// OrderDetailItem - позиция заказа для отображения
// Name берётся из живого каталога; если товар удалён, остаётся снимок
type OrderDetailItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// OrderEvent представляет событие заказа для Kafka
type OrderEvent struct {
	EventType   string      `json:"event_type"` // ORDER_CREATED, ORDER_STATUS_CHANGED
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      uuid.UUID   `json:"user_id"`
	ChatID      int64       `json:"chat_id"`
	Total       float64     `json:"total"`
	Status      OrderStatus `json:"status"`
	ItemsCount  int         `json:"items_count"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ProductEvent представляет событие изменения товара для Kafka
// Отправляется при смене цены
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_UPDATED
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	OldPrice  float64   `json:"old_price"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportRow - плоская строка CSV выгрузки заказов
// Одна строка на позицию заказа; заказ без позиций даёт одну строку с пустыми полями позиции
type ExportRow struct {
	OrderNumber string
	CreatedAt   time.Time
	Status      string
	UserChatID  int64
	UserName    string
	ItemName    string
	Qty         int
	Price       float64
	LineTotal   float64
	OrderTotal  float64
	HasItem     bool
}
