package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/repository"
	"lavka/pkg/logger"
	"lavka/pkg/metrics"

	"github.com/google/uuid"
)

// phonePattern принимает международные номера с пробелами, скобками и дефисами
var phonePattern = regexp.MustCompile(`^[+0-9][0-9\s\-()]{5,}$`)

// Тексты реплик диалога оформления
const (
	promptName      = "How should we address you? Please enter your name."
	promptPhone     = "Enter a contact phone number."
	promptShipping  = "Choose a shipping method: courier or pickup."
	promptAddress   = "Enter the delivery address."
	promptConfirm   = "Confirm the order? (yes/no)"
	replyBadName    = "The name looks too short. Please enter at least 2 characters."
	replyBadPhone   = "That doesn't look like a phone number. Try again."
	replyBadShip    = "Please answer either courier or pickup."
	replyBadAddress = "The address looks too short. Please enter at least 5 characters."
	replyCancelled  = "Checkout cancelled. Your cart is untouched."
	replyEmptyCart  = "Your cart is empty, there is nothing to order."
)

// CheckoutFlowService ведёт пошаговый диалог оформления заказа
// Состояние диалога живёт в Redis с TTL; невалидный ввод не двигает шаг,
// а повторяет вопрос
type CheckoutFlowService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	orders      OrderCreator
}

// OrderCreator - часть сервиса заказов, нужная диалогу оформления
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID uuid.UUID) (*entity.Order, error)
}

// NewCheckoutFlowService создает новый сервис диалога оформления
func NewCheckoutFlowService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	orders OrderCreator,
) *CheckoutFlowService {
	return &CheckoutFlowService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		orders:      orders,
	}
}

// Start начинает диалог оформления для чата
// Уже идущий диалог сбрасывается и начинается заново
func (s *CheckoutFlowService) Start(ctx context.Context, chatID int64) (*entity.FlowReply, error) {
	// Пользователь должен существовать до начала диалога
	if _, err := s.userRepo.GetOrCreate(ctx, chatID); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	session := &entity.CheckoutSession{
		ChatID: chatID,
		Step:   entity.CheckoutStepName,
	}
	if err := s.sessionRepo.SaveCheckout(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}

	return &entity.FlowReply{
		Step:   string(entity.CheckoutStepName),
		Prompt: promptName,
	}, nil
}

// Input обрабатывает очередную реплику пользователя в диалоге
// Валидный ввод двигает диалог на следующий шаг, невалидный повторяет вопрос
func (s *CheckoutFlowService) Input(ctx context.Context, chatID int64, text string) (*entity.FlowReply, error) {
	session, err := s.sessionRepo.GetCheckout(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNoActiveFlow
		}
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	text = strings.TrimSpace(text)

	switch session.Step {
	case entity.CheckoutStepName:
		if len([]rune(text)) < 2 {
			return s.repeat(session, replyBadName)
		}
		session.Name = text
		session.Step = entity.CheckoutStepPhone
		return s.advance(ctx, session, promptPhone)

	case entity.CheckoutStepPhone:
		if !phonePattern.MatchString(text) {
			return s.repeat(session, replyBadPhone)
		}
		session.Phone = text
		session.Step = entity.CheckoutStepShipping
		return s.advance(ctx, session, promptShipping)

	case entity.CheckoutStepShipping:
		method := strings.ToLower(text)
		if method != "courier" && method != "pickup" {
			return s.repeat(session, replyBadShip)
		}
		session.Shipping = method
		session.Step = entity.CheckoutStepAddress
		return s.advance(ctx, session, promptAddress)

	case entity.CheckoutStepAddress:
		if len([]rune(text)) < 5 {
			return s.repeat(session, replyBadAddress)
		}
		session.Address = text
		session.Step = entity.CheckoutStepConfirm
		summary := fmt.Sprintf("Name: %s\nPhone: %s\nShipping: %s\nAddress: %s\n%s",
			session.Name, session.Phone, session.Shipping, session.Address, promptConfirm)
		return s.advance(ctx, session, summary)

	case entity.CheckoutStepConfirm:
		return s.confirm(ctx, session, text)
	}

	return nil, fmt.Errorf("unknown checkout step: %s", session.Step)
}

// Cancel прерывает диалог и очищает его состояние
// Корзина при отмене не трогается
func (s *CheckoutFlowService) Cancel(ctx context.Context, chatID int64) (*entity.FlowReply, error) {
	if err := s.sessionRepo.DeleteCheckout(ctx, chatID); err != nil {
		return nil, fmt.Errorf("failed to delete checkout session: %w", err)
	}

	metrics.CheckoutFlows.WithLabelValues("cancelled").Inc()

	return &entity.FlowReply{Done: true, Prompt: replyCancelled}, nil
}

// confirm обрабатывает финальный шаг: yes создаёт заказ, no отменяет диалог
func (s *CheckoutFlowService) confirm(ctx context.Context, session *entity.CheckoutSession, text string) (*entity.FlowReply, error) {
	switch strings.ToLower(text) {
	case "yes", "y":
	case "no", "n":
		return s.Cancel(ctx, session.ChatID)
	default:
		return s.repeat(session, promptConfirm)
	}

	// Контакты сохраняются до создания заказа: даже при пустой корзине
	// введённые данные не пропадают
	user, err := s.userRepo.UpdateDetails(ctx, session.ChatID, session.Name, session.Phone, session.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to update user details: %w", err)
	}

	order, err := s.orders.CreateOrder(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			// Пустая корзина фатальна для диалога: прерываем и чистим состояние
			if delErr := s.sessionRepo.DeleteCheckout(ctx, session.ChatID); delErr != nil {
				logger.Warn().Err(delErr).Int64("chat_id", session.ChatID).Msg("failed to delete checkout session")
			}
			metrics.CheckoutFlows.WithLabelValues("empty_cart").Inc()
			return &entity.FlowReply{Done: true, Prompt: replyEmptyCart}, nil
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.sessionRepo.DeleteCheckout(ctx, session.ChatID); err != nil {
		logger.Warn().Err(err).Int64("chat_id", session.ChatID).Msg("failed to delete checkout session")
	}

	metrics.CheckoutFlows.WithLabelValues("completed").Inc()

	return &entity.FlowReply{
		Done:   true,
		Prompt: fmt.Sprintf("Order %s placed! Total: %.2f. We will contact you shortly.", order.OrderNumber, order.Total),
		Order:  order,
	}, nil
}

// advance сохраняет продвинувшуюся сессию и возвращает следующий вопрос
func (s *CheckoutFlowService) advance(ctx context.Context, session *entity.CheckoutSession, prompt string) (*entity.FlowReply, error) {
	if err := s.sessionRepo.SaveCheckout(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}

	return &entity.FlowReply{Step: string(session.Step), Prompt: prompt}, nil
}

// repeat повторяет вопрос текущего шага, не меняя состояние
func (s *CheckoutFlowService) repeat(session *entity.CheckoutSession, prompt string) (*entity.FlowReply, error) {
	return &entity.FlowReply{Step: string(session.Step), Prompt: prompt}, nil
}
