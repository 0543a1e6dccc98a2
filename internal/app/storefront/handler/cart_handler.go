package handler

import (
	"errors"
	"net/http"
	"strconv"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CartHandler обрабатывает HTTP запросы корзины
// Маршруты ключуются chat_id мессенджера: шлюз бота обращается сюда
// от имени конкретного чата
type CartHandler struct {
	cartService *service.CartService
	userService *service.UserService
	validator   *validator.Validate
}

// NewCartHandler создает новый обработчик корзины
func NewCartHandler(cartService *service.CartService, userService *service.UserService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		userService: userService,
		validator:   validator.New(),
	}
}

// AddToCart обрабатывает POST /chats/:chat_id/cart/items
// Пользователь создаётся при первом обращении; повторное добавление
// товара суммирует количество
func (h *CartHandler) AddToCart(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req entity.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.userService.EnsureUser(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		return
	}

	item, err := h.cartService.AddToCart(c.Request.Context(), user.ID, req.ProductID, req.Qty)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetCart обрабатывает GET /chats/:chat_id/cart
// Итог корзины собирается по живым ценам каталога
func (h *CartHandler) GetCart(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	user, err := h.userService.EnsureUser(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}

// ChangeQty обрабатывает PATCH /cart/items/:id
// Принимает delta +1/-1; количество не опускается ниже 1
func (h *CartHandler) ChangeQty(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	var req entity.ChangeQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	item, err := h.cartService.ChangeQty(c.Request.Context(), itemID, req.Delta)
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change quantity"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// RemoveItem обрабатывает DELETE /cart/items/:id
// Удаление уже отсутствующей позиции возвращает успех
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), itemID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Item removed"})
}

// ClearCart обрабатывает DELETE /chats/:chat_id/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	user, err := h.userService.EnsureUser(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Cart cleared"})
}

// parseChatID извлекает chat_id из URL, отвечая 400 при мусорном значении
func parseChatID(c *gin.Context) (int64, bool) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
		return 0, false
	}
	return chatID, true
}
