package entity

import "github.com/google/uuid"

// CheckoutStep - шаг диалога оформления заказа
type CheckoutStep string

const (
	CheckoutStepName     CheckoutStep = "name"
	CheckoutStepPhone    CheckoutStep = "phone"
	CheckoutStepShipping CheckoutStep = "shipping"
	CheckoutStepAddress  CheckoutStep = "address"
	CheckoutStepConfirm  CheckoutStep = "confirm"
)

// CheckoutSession - состояние диалога оформления заказа одного чата
// Хранится в Redis с TTL, полностью очищается при любом завершении диалога
type CheckoutSession struct {
	ChatID   int64        `json:"chat_id"`
	Step     CheckoutStep `json:"step"`
	Name     string       `json:"name,omitempty"`
	Phone    string       `json:"phone,omitempty"`
	Shipping string       `json:"shipping,omitempty"`
	Address  string       `json:"address,omitempty"`
}

// AdminStep - шаг админского диалога
type AdminStep string

const (
	AdminStepName        AdminStep = "name"
	AdminStepPrice       AdminStep = "price"
	AdminStepCategory    AdminStep = "category"
	AdminStepDescription AdminStep = "description"
	AdminStepImage       AdminStep = "image"
	AdminStepConfirm     AdminStep = "confirm"
	AdminStepEditValue   AdminStep = "edit_value"
	AdminStepPhoto       AdminStep = "photo"
)

// ProductDraft - черновик товара, собираемый админским диалогом
type ProductDraft struct {
	Name        string    `json:"name,omitempty"`
	Price       float64   `json:"price,omitempty"`
	CategoryID  uuid.UUID `json:"category_id,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// AdminSession - состояние админского диалога (создание товара,
// правка одного поля, загрузка фото)
type AdminSession struct {
	ChatID        int64        `json:"chat_id"`
	Step          AdminStep    `json:"step"`
	Draft         ProductDraft `json:"draft,omitempty"`
	EditProductID uuid.UUID    `json:"edit_product_id,omitempty"`
	EditField     string       `json:"edit_field,omitempty"`
}
