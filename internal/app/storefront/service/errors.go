package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrEmptyCart - оформление заказа на пустой корзине
	// Фатальна для диалога оформления: он прерывается, состояние очищается
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderNumberConflict - не удалось подобрать свободный номер заказа
	// за отведённое число попыток
	ErrOrderNumberConflict = errors.New("failed to allocate unique order number")

	// ErrInvalidStatus - статус вне фиксированного набора new/paid/shipped/done
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrNoActiveFlow - реплика пришла, а диалог не начат или уже истёк
	ErrNoActiveFlow = errors.New("no active flow for this chat")
)
