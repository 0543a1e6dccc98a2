package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/repository"
	"lavka/pkg/logger"

	"github.com/google/uuid"
)

// skipMarker позволяет админу пропустить необязательный шаг диалога
const skipMarker = "-"

// Тексты реплик админских диалогов
const (
	promptProductName  = "New product. Enter the product name."
	promptProductPrice = "Enter the price, e.g. 99.90."
	promptProductCat   = "Enter the category ID."
	promptProductDesc  = "Enter a description, or - to skip."
	promptProductImage = "Enter an image URL, or - to skip."
	promptPhotoFile    = "Send the photo for this product."
	replyBadPrice      = "Invalid price. Enter a number like 99.90."
	replyBadCategory   = "Category not found. Enter a valid category ID."
	replyAdminCancel   = "Cancelled."
)

// AdminFlowService ведёт админские диалоги: создание товара по шагам,
// правку одного поля и привязку фотографии
// Состояние живёт в Redis с тем же TTL, что и покупательские диалоги
type AdminFlowService struct {
	sessionRepo  repository.SessionRepository
	categoryRepo repository.CategoryRepository
	catalog      *CatalogService
}

// NewAdminFlowService создает новый сервис админских диалогов
func NewAdminFlowService(
	sessionRepo repository.SessionRepository,
	categoryRepo repository.CategoryRepository,
	catalog *CatalogService,
) *AdminFlowService {
	return &AdminFlowService{
		sessionRepo:  sessionRepo,
		categoryRepo: categoryRepo,
		catalog:      catalog,
	}
}

// StartNewProduct начинает диалог создания товара
// Незавершённый предыдущий диалог этого чата сбрасывается
func (s *AdminFlowService) StartNewProduct(ctx context.Context, chatID int64) (*entity.FlowReply, error) {
	session := &entity.AdminSession{
		ChatID: chatID,
		Step:   entity.AdminStepName,
	}
	if err := s.sessionRepo.SaveAdmin(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save admin session: %w", err)
	}

	return &entity.FlowReply{Step: string(entity.AdminStepName), Prompt: promptProductName}, nil
}

// StartEdit начинает диалог правки одного поля товара
// Допустимые поля: name, price, category, description
func (s *AdminFlowService) StartEdit(ctx context.Context, chatID int64, productID uuid.UUID, field string) (*entity.FlowReply, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	var prompt string
	switch field {
	case "name":
		prompt = "Enter the new name."
	case "price":
		prompt = "Enter the new price, e.g. 99.90."
	case "category":
		prompt = "Enter the new category ID."
	case "description":
		prompt = "Enter the new description, or - to clear it."
	default:
		return nil, fmt.Errorf("unknown edit field: %s", field)
	}

	session := &entity.AdminSession{
		ChatID:        chatID,
		Step:          entity.AdminStepEditValue,
		EditProductID: productID,
		EditField:     field,
	}
	if err := s.sessionRepo.SaveAdmin(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save admin session: %w", err)
	}

	return &entity.FlowReply{Step: string(entity.AdminStepEditValue), Prompt: prompt}, nil
}

// StartSetPhoto начинает диалог привязки фотографии к товару
func (s *AdminFlowService) StartSetPhoto(ctx context.Context, chatID int64, productID uuid.UUID) (*entity.FlowReply, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	session := &entity.AdminSession{
		ChatID:        chatID,
		Step:          entity.AdminStepPhoto,
		EditProductID: productID,
	}
	if err := s.sessionRepo.SaveAdmin(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save admin session: %w", err)
	}

	return &entity.FlowReply{Step: string(entity.AdminStepPhoto), Prompt: promptPhotoFile}, nil
}

// Input обрабатывает очередную реплику админа в активном диалоге
func (s *AdminFlowService) Input(ctx context.Context, chatID int64, text string) (*entity.FlowReply, error) {
	session, err := s.sessionRepo.GetAdmin(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNoActiveFlow
		}
		return nil, fmt.Errorf("failed to get admin session: %w", err)
	}

	text = strings.TrimSpace(text)

	switch session.Step {
	case entity.AdminStepName:
		if len([]rune(text)) < 2 {
			return s.repeat(session, "The name looks too short. Please enter at least 2 characters.")
		}
		session.Draft.Name = text
		session.Step = entity.AdminStepPrice
		return s.advance(ctx, session, promptProductPrice)

	case entity.AdminStepPrice:
		price, ok := parsePrice(text)
		if !ok {
			return s.repeat(session, replyBadPrice)
		}
		session.Draft.Price = price
		session.Step = entity.AdminStepCategory
		return s.advance(ctx, session, promptProductCat)

	case entity.AdminStepCategory:
		categoryID, err := uuid.Parse(text)
		if err != nil {
			return s.repeat(session, replyBadCategory)
		}
		if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return s.repeat(session, replyBadCategory)
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
		session.Draft.CategoryID = categoryID
		session.Step = entity.AdminStepDescription
		return s.advance(ctx, session, promptProductDesc)

	case entity.AdminStepDescription:
		if text != skipMarker {
			session.Draft.Description = text
		}
		session.Step = entity.AdminStepImage
		return s.advance(ctx, session, promptProductImage)

	case entity.AdminStepImage:
		if text != skipMarker {
			session.Draft.ImageURL = text
		}
		session.Step = entity.AdminStepConfirm
		summary := fmt.Sprintf("Name: %s\nPrice: %.2f\nDescription: %s\nSave? (yes/no)",
			session.Draft.Name, session.Draft.Price, session.Draft.Description)
		return s.advance(ctx, session, summary)

	case entity.AdminStepConfirm:
		return s.confirmProduct(ctx, session, text)

	case entity.AdminStepEditValue:
		return s.applyEdit(ctx, session, text)

	case entity.AdminStepPhoto:
		return s.applyPhoto(ctx, session, text)
	}

	return nil, fmt.Errorf("unknown admin step: %s", session.Step)
}

// Cancel прерывает активный админский диалог
func (s *AdminFlowService) Cancel(ctx context.Context, chatID int64) (*entity.FlowReply, error) {
	if err := s.sessionRepo.DeleteAdmin(ctx, chatID); err != nil {
		return nil, fmt.Errorf("failed to delete admin session: %w", err)
	}

	return &entity.FlowReply{Done: true, Prompt: replyAdminCancel}, nil
}

// confirmProduct завершает диалог создания: yes сохраняет собранный черновик
func (s *AdminFlowService) confirmProduct(ctx context.Context, session *entity.AdminSession, text string) (*entity.FlowReply, error) {
	switch strings.ToLower(text) {
	case "yes", "y":
	case "no", "n":
		return s.Cancel(ctx, session.ChatID)
	default:
		return s.repeat(session, "Save? (yes/no)")
	}

	product, err := s.catalog.CreateProduct(ctx, &entity.CreateProductRequest{
		Name:        session.Draft.Name,
		Price:       session.Draft.Price,
		CategoryID:  session.Draft.CategoryID,
		Description: session.Draft.Description,
		ImageURL:    session.Draft.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	s.finish(ctx, session.ChatID)

	return &entity.FlowReply{
		Done:   true,
		Prompt: fmt.Sprintf("Product saved: %s (%.2f)", product.Name, product.Price),
	}, nil
}

// applyEdit валидирует введённое значение и обновляет одно поле товара
// Та же валидация, что и в диалоге создания: невалидный ввод повторяет вопрос
func (s *AdminFlowService) applyEdit(ctx context.Context, session *entity.AdminSession, text string) (*entity.FlowReply, error) {
	req := &entity.UpdateProductRequest{}

	switch session.EditField {
	case "name":
		if len([]rune(text)) < 2 {
			return s.repeat(session, "The name looks too short. Please enter at least 2 characters.")
		}
		req.Name = &text
	case "price":
		price, ok := parsePrice(text)
		if !ok {
			return s.repeat(session, replyBadPrice)
		}
		req.Price = &price
	case "category":
		categoryID, err := uuid.Parse(text)
		if err != nil {
			return s.repeat(session, replyBadCategory)
		}
		req.CategoryID = &categoryID
	case "description":
		value := text
		if value == skipMarker {
			value = ""
		}
		req.Description = &value
	default:
		return nil, fmt.Errorf("unknown edit field: %s", session.EditField)
	}

	product, err := s.catalog.UpdateProduct(ctx, session.EditProductID, req)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return s.repeat(session, replyBadCategory)
		}
		return nil, err
	}

	s.finish(ctx, session.ChatID)

	return &entity.FlowReply{
		Done:   true,
		Prompt: fmt.Sprintf("Updated %s for %s", session.EditField, product.Name),
	}, nil
}

// applyPhoto привязывает file_id присланной фотографии к товару
func (s *AdminFlowService) applyPhoto(ctx context.Context, session *entity.AdminSession, fileID string) (*entity.FlowReply, error) {
	if fileID == "" {
		return s.repeat(session, promptPhotoFile)
	}

	product, err := s.catalog.SetProductImage(ctx, session.EditProductID, fileID)
	if err != nil {
		return nil, err
	}

	s.finish(ctx, session.ChatID)

	return &entity.FlowReply{
		Done:   true,
		Prompt: fmt.Sprintf("Photo saved for %s", product.Name),
	}, nil
}

// finish чистит состояние завершённого диалога
func (s *AdminFlowService) finish(ctx context.Context, chatID int64) {
	if err := s.sessionRepo.DeleteAdmin(ctx, chatID); err != nil {
		logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to delete admin session")
	}
}

// advance сохраняет продвинувшуюся сессию и возвращает следующий вопрос
func (s *AdminFlowService) advance(ctx context.Context, session *entity.AdminSession, prompt string) (*entity.FlowReply, error) {
	if err := s.sessionRepo.SaveAdmin(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save admin session: %w", err)
	}

	return &entity.FlowReply{Step: string(session.Step), Prompt: prompt}, nil
}

// repeat повторяет вопрос текущего шага, не меняя состояние
func (s *AdminFlowService) repeat(session *entity.AdminSession, prompt string) (*entity.FlowReply, error) {
	return &entity.FlowReply{Step: string(session.Step), Prompt: prompt}, nil
}

// parsePrice разбирает цену из пользовательского ввода
// Запятая принимается как десятичный разделитель, цена не может быть отрицательной
func parsePrice(text string) (float64, bool) {
	normalized := strings.ReplaceAll(text, ",", ".")
	price, err := strconv.ParseFloat(normalized, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}
