package service

import (
	"context"
	"errors"
	"testing"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/repository"
	"lavka/internal/app/storefront/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 100500

// mockOrderCreator подменяет сервис заказов в тестах диалога
type mockOrderCreator struct {
	mock.Mock
}

func (m *mockOrderCreator) CreateOrder(ctx context.Context, userID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func checkoutSession(step entity.CheckoutStep) *entity.CheckoutSession {
	return &entity.CheckoutSession{
		ChatID:   testChatID,
		Step:     step,
		Name:     "Ivan",
		Phone:    "+7 900 000-00-00",
		Shipping: "courier",
	}
}

func newCheckoutMocks() (*mocks.MockSessionRepository, *mocks.MockUserRepository, *mockOrderCreator) {
	return new(mocks.MockSessionRepository), new(mocks.MockUserRepository), new(mockOrderCreator)
}

// ==================== Start Tests ====================

func TestCheckoutFlow_Start(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	user := newTestUser()
	user.ChatID = testChatID
	userRepo.On("GetOrCreate", ctx, testChatID).Return(user, nil)
	sessionRepo.On("SaveCheckout", ctx, mock.MatchedBy(func(s *entity.CheckoutSession) bool {
		return s.ChatID == testChatID && s.Step == entity.CheckoutStepName
	})).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Start(ctx, testChatID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepName), reply.Step)
	assert.False(t, reply.Done)
	sessionRepo.AssertExpectations(t)
}

// ==================== Input Validation Tests ====================

func TestCheckoutFlow_Input_NoActiveFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	sessionRepo.On("GetCheckout", ctx, testChatID).Return(nil, repository.ErrSessionNotFound)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "Ivan")

	// Assert
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, ErrNoActiveFlow)
}

func TestCheckoutFlow_Input_ShortNameRepeatsStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := &entity.CheckoutSession{ChatID: testChatID, Step: entity.CheckoutStepName}
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "A")

	// Assert - шаг не сдвинулся, сессия не пересохранялась
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepName), reply.Step)
	assert.False(t, reply.Done)
	sessionRepo.AssertNotCalled(t, "SaveCheckout", mock.Anything, mock.Anything)
}

func TestCheckoutFlow_Input_ValidNameAdvancesToPhone(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := &entity.CheckoutSession{ChatID: testChatID, Step: entity.CheckoutStepName}
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	sessionRepo.On("SaveCheckout", ctx, mock.MatchedBy(func(s *entity.CheckoutSession) bool {
		return s.Step == entity.CheckoutStepPhone && s.Name == "Ivan"
	})).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "  Ivan  ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepPhone), reply.Step)
	sessionRepo.AssertExpectations(t)
}

func TestCheckoutFlow_Input_BadPhoneRepeatsStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := &entity.CheckoutSession{ChatID: testChatID, Step: entity.CheckoutStepPhone, Name: "Ivan"}
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "not-a-phone")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepPhone), reply.Step)
}

func TestCheckoutFlow_Input_PhoneFormats(t *testing.T) {
	// Проверяем принимаемые и отклоняемые форматы телефона
	cases := []struct {
		phone string
		valid bool
	}{
		{"+7 900 000-00-00", true},
		{"89000000000", true},
		{"+1 (555) 123-4567", true},
		{"12345", false},
		{"phone", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, phonePattern.MatchString(tc.phone), "phone %q", tc.phone)
	}
}

func TestCheckoutFlow_Input_ShippingAcceptsCourierAndPickup(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := &entity.CheckoutSession{ChatID: testChatID, Step: entity.CheckoutStepShipping, Name: "Ivan", Phone: "+79000000000"}
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	sessionRepo.On("SaveCheckout", ctx, mock.MatchedBy(func(s *entity.CheckoutSession) bool {
		return s.Step == entity.CheckoutStepAddress && s.Shipping == "pickup"
	})).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act - регистр не важен
	reply, err := flow.Input(ctx, testChatID, "PICKUP")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepAddress), reply.Step)
}

func TestCheckoutFlow_Input_UnknownShippingRepeatsStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := &entity.CheckoutSession{ChatID: testChatID, Step: entity.CheckoutStepShipping}
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "drone")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepShipping), reply.Step)
}

func TestCheckoutFlow_Input_ShortAddressRepeatsStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepAddress)
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "abc")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepAddress), reply.Step)
}

func TestCheckoutFlow_Input_AddressAdvancesToConfirm(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepAddress)
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	sessionRepo.On("SaveCheckout", ctx, mock.MatchedBy(func(s *entity.CheckoutSession) bool {
		return s.Step == entity.CheckoutStepConfirm && s.Address == "Lenina 1, apt 2"
	})).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "Lenina 1, apt 2")

	// Assert - сводка содержит введённые данные
	require.NoError(t, err)
	assert.Equal(t, string(entity.CheckoutStepConfirm), reply.Step)
	assert.Contains(t, reply.Prompt, "Ivan")
	assert.Contains(t, reply.Prompt, "courier")
	assert.Contains(t, reply.Prompt, "Lenina 1, apt 2")
}

// ==================== Confirm Tests ====================

func TestCheckoutFlow_Confirm_YesCreatesOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepConfirm)
	session.Address = "Lenina 1, apt 2"

	user := newTestUser()
	user.ChatID = testChatID
	order := newTestOrder(user.ID)

	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	userRepo.On("UpdateDetails", ctx, testChatID, "Ivan", "+7 900 000-00-00", "Lenina 1, apt 2").Return(user, nil)
	orders.On("CreateOrder", ctx, user.ID).Return(order, nil)
	sessionRepo.On("DeleteCheckout", ctx, testChatID).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "yes")

	// Assert
	require.NoError(t, err)
	assert.True(t, reply.Done)
	require.NotNil(t, reply.Order)
	assert.Equal(t, order.OrderNumber, reply.Order.OrderNumber)
	assert.Contains(t, reply.Prompt, order.OrderNumber)
	sessionRepo.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestCheckoutFlow_Confirm_NoCancelsFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepConfirm)
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	sessionRepo.On("DeleteCheckout", ctx, testChatID).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "no")

	// Assert - корзина не тронута, заказ не создавался
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Nil(t, reply.Order)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutFlow_Confirm_GarbageRepeatsPrompt(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepConfirm)
	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "maybe")

	// Assert
	require.NoError(t, err)
	assert.False(t, reply.Done)
	assert.Equal(t, string(entity.CheckoutStepConfirm), reply.Step)
}

func TestCheckoutFlow_Confirm_EmptyCartAbortsFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepConfirm)
	session.Address = "Lenina 1, apt 2"

	user := newTestUser()
	user.ChatID = testChatID

	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	userRepo.On("UpdateDetails", ctx, testChatID, "Ivan", "+7 900 000-00-00", "Lenina 1, apt 2").Return(user, nil)
	orders.On("CreateOrder", ctx, user.ID).Return(nil, ErrEmptyCart)
	sessionRepo.On("DeleteCheckout", ctx, testChatID).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "yes")

	// Assert - диалог прерван, состояние очищено, контакты уже сохранены
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Nil(t, reply.Order)
	sessionRepo.AssertCalled(t, "DeleteCheckout", ctx, testChatID)
	userRepo.AssertExpectations(t)
}

func TestCheckoutFlow_Confirm_OrderErrorKeepsSession(t *testing.T) {
	// Arrange - при сбое БД сессия не удаляется, подтверждение можно повторить
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	session := checkoutSession(entity.CheckoutStepConfirm)
	session.Address = "Lenina 1, apt 2"

	user := newTestUser()
	user.ChatID = testChatID

	sessionRepo.On("GetCheckout", ctx, testChatID).Return(session, nil)
	userRepo.On("UpdateDetails", ctx, testChatID, mock.Anything, mock.Anything, mock.Anything).Return(user, nil)
	orders.On("CreateOrder", ctx, user.ID).Return(nil, errors.New("db down"))

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Input(ctx, testChatID, "yes")

	// Assert
	assert.Nil(t, reply)
	assert.Error(t, err)
	sessionRepo.AssertNotCalled(t, "DeleteCheckout", mock.Anything, mock.Anything)
}

// ==================== Cancel Tests ====================

func TestCheckoutFlow_Cancel(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sessionRepo, userRepo, orders := newCheckoutMocks()

	sessionRepo.On("DeleteCheckout", ctx, testChatID).Return(nil)

	flow := NewCheckoutFlowService(sessionRepo, userRepo, orders)

	// Act
	reply, err := flow.Cancel(ctx, testChatID)

	// Assert
	require.NoError(t, err)
	assert.True(t, reply.Done)
	sessionRepo.AssertExpectations(t)
}
