package handler

import (
	"errors"
	"net/http"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CheckoutHandler обрабатывает HTTP запросы диалога оформления заказа
type CheckoutHandler struct {
	flow      *service.CheckoutFlowService
	validator *validator.Validate
}

// NewCheckoutHandler создает новый обработчик диалога оформления
func NewCheckoutHandler(flow *service.CheckoutFlowService) *CheckoutHandler {
	return &CheckoutHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Start обрабатывает POST /chats/:chat_id/checkout/start
func (h *CheckoutHandler) Start(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	reply, err := h.flow.Start(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Input обрабатывает POST /chats/:chat_id/checkout/input
// Передаёт очередную реплику пользователя диалоговому контроллеру
func (h *CheckoutHandler) Input(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req entity.FlowInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	reply, err := h.flow.Input(c.Request.Context(), chatID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveFlow) {
			c.JSON(http.StatusConflict, gin.H{"error": "No active checkout for this chat"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process input"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Cancel обрабатывает POST /chats/:chat_id/checkout/cancel
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	reply, err := h.flow.Cancel(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel checkout"})
		return
	}

	c.JSON(http.StatusOK, reply)
}
