package entity

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=2,max=150"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gte=0"`
	ImageURL    string    `json:"image_url"`
}

// UpdateProductRequest - частичное обновление товара
// nil поле означает "не менять"
type UpdateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        *string    `json:"name" validate:"omitempty,min=2,max=150"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string    `json:"image_url"`
	IsActive    *bool      `json:"is_active"`
}

type SetProductImageRequest struct {
	FileID string `json:"file_id" validate:"required"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"omitempty,gte=1"`
}

type ChangeQtyRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=new paid shipped done"`
}

// FlowInputRequest - очередная реплика пользователя в диалоге
type FlowInputRequest struct {
	Text string `json:"text" validate:"required"`
}

type StartEditRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Field     string    `json:"field" validate:"required,oneof=name price category description"`
}

type StartPhotoRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

// FlowReply - ответ диалогового контроллера транспортному слою
type FlowReply struct {
	Step   string `json:"step"`             // Текущий шаг после обработки ввода
	Prompt string `json:"prompt"`           // Текст для отправки пользователю
	Done   bool   `json:"done"`             // Диалог завершён (успешно или отменой)
	Order  *Order `json:"order,omitempty"`  // Создан при успешном завершении checkout
}
