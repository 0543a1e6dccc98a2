package handler

import (
	"errors"
	"net/http"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AdminFlowHandler обрабатывает HTTP запросы админских диалогов:
// пошаговое создание товара, правка поля, привязка фото
type AdminFlowHandler struct {
	flow      *service.AdminFlowService
	validator *validator.Validate
}

// NewAdminFlowHandler создает новый обработчик админских диалогов
func NewAdminFlowHandler(flow *service.AdminFlowService) *AdminFlowHandler {
	return &AdminFlowHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// StartNewProduct обрабатывает POST /admin/chats/:chat_id/flow/new-product
func (h *AdminFlowHandler) StartNewProduct(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	reply, err := h.flow.StartNewProduct(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start product flow"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// StartEdit обрабатывает POST /admin/chats/:chat_id/flow/edit
func (h *AdminFlowHandler) StartEdit(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req entity.StartEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	reply, err := h.flow.StartEdit(c.Request.Context(), chatID, req.ProductID, req.Field)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start edit flow"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// StartSetPhoto обрабатывает POST /admin/chats/:chat_id/flow/photo
func (h *AdminFlowHandler) StartSetPhoto(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req entity.StartPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	reply, err := h.flow.StartSetPhoto(c.Request.Context(), chatID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start photo flow"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Input обрабатывает POST /admin/chats/:chat_id/flow/input
func (h *AdminFlowHandler) Input(c *gin.Context) {
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
			c.JSON(http.StatusConflict, gin.H{"error": "No active admin flow for this chat"})
			return
		}
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process input"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Cancel обрабатывает POST /admin/chats/:chat_id/flow/cancel
func (h *AdminFlowHandler) Cancel(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	reply, err := h.flow.Cancel(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel admin flow"})
		return
	}

	c.JSON(http.StatusOK, reply)
}
