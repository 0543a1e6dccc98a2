package service

import (
	"context"
	"testing"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/repository"
	"lavka/internal/app/storefront/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminFlowMocks struct {
	sessionRepo  *mocks.MockSessionRepository
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
}

func newAdminFlow() (*AdminFlowService, *adminFlowMocks) {
	m := &adminFlowMocks{
		sessionRepo:  new(mocks.MockSessionRepository),
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
	}
	catalog := NewCatalogService(m.categoryRepo, m.productRepo, new(mocks.MockCategoryCache), new(mocks.MockMessagePublisher))
	return NewAdminFlowService(m.sessionRepo, m.categoryRepo, catalog), m
}

// ==================== New Product Flow Tests ====================

func TestAdminFlow_StartNewProduct(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	m.sessionRepo.On("SaveAdmin", ctx, mock.MatchedBy(func(s *entity.AdminSession) bool {
		return s.ChatID == testChatID && s.Step == entity.AdminStepName
	})).Return(nil)

	// Act
	reply, err := flow.StartNewProduct(ctx, testChatID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepName), reply.Step)
	m.sessionRepo.AssertExpectations(t)
}

func TestAdminFlow_NewProduct_FullPath(t *testing.T) {
	// Проходим весь диалог создания: имя, цена с запятой, категория,
	// пропуск описания и картинки, подтверждение
	ctx := context.Background()
	flow, m := newAdminFlow()

	categoryID := uuid.New()
	category := &entity.Category{ID: categoryID, Name: "Fruits"}

	// Каждый Input перечитывает сессию, поэтому отдаём состояние пошагово
	m.sessionRepo.On("SaveAdmin", ctx, mock.Anything).Return(nil)
	m.sessionRepo.On("GetAdmin", ctx, testChatID).
		Return(&entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepName}, nil).Once()
	m.sessionRepo.On("GetAdmin", ctx, testChatID).
		Return(&entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepPrice,
			Draft: entity.ProductDraft{Name: "Apples"}}, nil).Once()
	m.sessionRepo.On("GetAdmin", ctx, testChatID).
		Return(&entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepCategory,
			Draft: entity.ProductDraft{Name: "Apples", Price: 99.9}}, nil).Once()
	m.sessionRepo.On("GetAdmin", ctx, testChatID).
		Return(&entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepDescription,
			Draft: entity.ProductDraft{Name: "Apples", Price: 99.9, CategoryID: categoryID}}, nil).Once()
	m.sessionRepo.On("GetAdmin", ctx, testChatID).
		Return(&entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepImage,
			Draft: entity.ProductDraft{Name: "Apples", Price: 99.9, CategoryID: categoryID}}, nil).Once()
	m.sessionRepo.On("GetAdmin", ctx, testChatID).
		Return(&entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepConfirm,
			Draft: entity.ProductDraft{Name: "Apples", Price: 99.9, CategoryID: categoryID}}, nil).Once()
	m.sessionRepo.On("DeleteAdmin", ctx, testChatID).Return(nil)

	m.categoryRepo.On("GetByID", ctx, categoryID).Return(category, nil)
	m.productRepo.On("Create", ctx, mock.MatchedBy(func(p *entity.Product) bool {
		return p.Name == "Apples" && p.Price == 99.9 && p.CategoryID == categoryID &&
			p.Description == "" && p.ImageURL == "" && p.IsActive
	})).Return(nil)

	_, err := flow.StartNewProduct(ctx, testChatID)
	require.NoError(t, err)

	reply, err := flow.Input(ctx, testChatID, "Apples")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepPrice), reply.Step)

	reply, err = flow.Input(ctx, testChatID, "99,90")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepCategory), reply.Step)

	reply, err = flow.Input(ctx, testChatID, categoryID.String())
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepDescription), reply.Step)

	reply, err = flow.Input(ctx, testChatID, "-")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepImage), reply.Step)

	reply, err = flow.Input(ctx, testChatID, "-")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepConfirm), reply.Step)
	assert.Contains(t, reply.Prompt, "Apples")

	reply, err = flow.Input(ctx, testChatID, "yes")
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Contains(t, reply.Prompt, "Product saved")

	m.productRepo.AssertExpectations(t)
	m.sessionRepo.AssertCalled(t, "DeleteAdmin", ctx, testChatID)
}

func TestAdminFlow_Input_BadPriceRepeatsStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	session := &entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepPrice}
	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)

	cases := []string{"free", "-10", "10.5.5", ""}
	for _, input := range cases {
		// Act
		reply, err := flow.Input(ctx, testChatID, input)

		// Assert
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, string(entity.AdminStepPrice), reply.Step, "input %q", input)
	}
	m.sessionRepo.AssertNotCalled(t, "SaveAdmin", mock.Anything, mock.Anything)
}

func TestAdminFlow_Input_UnknownCategoryRepeatsStep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	missingID := uuid.New()
	session := &entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepCategory}
	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)
	m.categoryRepo.On("GetByID", ctx, missingID).Return(nil, repository.ErrCategoryNotFound)

	// Act - сначала не-UUID, потом несуществующая категория
	reply, err := flow.Input(ctx, testChatID, "not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepCategory), reply.Step)

	reply, err = flow.Input(ctx, testChatID, missingID.String())
	require.NoError(t, err)
	assert.Equal(t, string(entity.AdminStepCategory), reply.Step)
	assert.Equal(t, replyBadCategory, reply.Prompt)
}

func TestAdminFlow_Confirm_NoCancels(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	session := &entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepConfirm}
	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)
	m.sessionRepo.On("DeleteAdmin", ctx, testChatID).Return(nil)

	// Act
	reply, err := flow.Input(ctx, testChatID, "no")

	// Assert - товар не создавался
	require.NoError(t, err)
	assert.True(t, reply.Done)
	m.productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminFlow_Input_NoActiveFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(nil, repository.ErrSessionNotFound)

	// Act
	reply, err := flow.Input(ctx, testChatID, "anything")

	// Assert
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, ErrNoActiveFlow)
}

// ==================== Edit Flow Tests ====================

func TestAdminFlow_StartEdit_UnknownProduct(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	productID := uuid.New()
	m.productRepo.On("GetByID", ctx, productID).Return(nil, repository.ErrProductNotFound)

	// Act
	reply, err := flow.StartEdit(ctx, testChatID, productID, "price")

	// Assert
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, ErrProductNotFound)
	m.sessionRepo.AssertNotCalled(t, "SaveAdmin", mock.Anything, mock.Anything)
}

func TestAdminFlow_StartEdit_UnknownField(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	productID := uuid.New()
	m.productRepo.On("GetByID", ctx, productID).Return(&entity.Product{ID: productID, Name: "Apples"}, nil)

	// Act
	reply, err := flow.StartEdit(ctx, testChatID, productID, "weight")

	// Assert
	assert.Nil(t, reply)
	assert.Error(t, err)
}

func TestAdminFlow_EditPrice_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	productID := uuid.New()
	session := &entity.AdminSession{
		ChatID:        testChatID,
		Step:          entity.AdminStepEditValue,
		EditProductID: productID,
		EditField:     "price",
	}
	product := &entity.Product{ID: productID, Name: "Apples", Price: 10}
	updated := &entity.Product{ID: productID, Name: "Apples", Price: 120.5}

	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)
	m.productRepo.On("GetByID", ctx, productID).Return(product, nil)
	m.productRepo.On("UpdateFields", ctx, productID, mock.MatchedBy(func(fields map[string]interface{}) bool {
		price, ok := fields["price"].(float64)
		return ok && price == 120.5 && len(fields) == 1
	})).Return(updated, nil)
	m.sessionRepo.On("DeleteAdmin", ctx, testChatID).Return(nil)

	// Act - запятая принимается как десятичный разделитель
	reply, err := flow.Input(ctx, testChatID, "120,50")

	// Assert
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Contains(t, reply.Prompt, "price")
	m.productRepo.AssertExpectations(t)
}

func TestAdminFlow_EditDescription_SkipMarkerClears(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	productID := uuid.New()
	session := &entity.AdminSession{
		ChatID:        testChatID,
		Step:          entity.AdminStepEditValue,
		EditProductID: productID,
		EditField:     "description",
	}
	product := &entity.Product{ID: productID, Name: "Apples", Description: "old"}

	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)
	m.productRepo.On("GetByID", ctx, productID).Return(product, nil)
	m.productRepo.On("UpdateFields", ctx, productID, mock.MatchedBy(func(fields map[string]interface{}) bool {
		desc, ok := fields["description"].(string)
		return ok && desc == ""
	})).Return(product, nil)
	m.sessionRepo.On("DeleteAdmin", ctx, testChatID).Return(nil)

	// Act
	reply, err := flow.Input(ctx, testChatID, "-")

	// Assert
	require.NoError(t, err)
	assert.True(t, reply.Done)
}

func TestAdminFlow_EditCategory_MissingCategoryRepeats(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	productID := uuid.New()
	missingID := uuid.New()
	session := &entity.AdminSession{
		ChatID:        testChatID,
		Step:          entity.AdminStepEditValue,
		EditProductID: productID,
		EditField:     "category",
	}
	product := &entity.Product{ID: productID, Name: "Apples"}

	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)
	m.productRepo.On("GetByID", ctx, productID).Return(product, nil)
	m.categoryRepo.On("GetByID", ctx, missingID).Return(nil, repository.ErrCategoryNotFound)

	// Act
	reply, err := flow.Input(ctx, testChatID, missingID.String())

	// Assert - диалог не завершён, вопрос повторён
	require.NoError(t, err)
	assert.False(t, reply.Done)
	assert.Equal(t, replyBadCategory, reply.Prompt)
	m.sessionRepo.AssertNotCalled(t, "DeleteAdmin", mock.Anything, mock.Anything)
}

// ==================== Photo Flow Tests ====================

func TestAdminFlow_SetPhoto_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	productID := uuid.New()
	product := &entity.Product{ID: productID, Name: "Apples"}
	withPhoto := &entity.Product{ID: productID, Name: "Apples", ImageFileID: "file-123"}

	m.productRepo.On("GetByID", ctx, productID).Return(product, nil)
	m.sessionRepo.On("SaveAdmin", ctx, mock.MatchedBy(func(s *entity.AdminSession) bool {
		return s.Step == entity.AdminStepPhoto && s.EditProductID == productID
	})).Return(nil)
	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(&entity.AdminSession{
		ChatID:        testChatID,
		Step:          entity.AdminStepPhoto,
		EditProductID: productID,
	}, nil)
	m.productRepo.On("SetImageFileID", ctx, productID, "file-123").Return(withPhoto, nil)
	m.sessionRepo.On("DeleteAdmin", ctx, testChatID).Return(nil)

	// Act
	_, err := flow.StartSetPhoto(ctx, testChatID, productID)
	require.NoError(t, err)

	reply, err := flow.Input(ctx, testChatID, "file-123")

	// Assert
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Contains(t, reply.Prompt, "Apples")
	m.productRepo.AssertExpectations(t)
}

func TestAdminFlow_SetPhoto_EmptyFileIDRepeats(t *testing.T) {
	// Arrange
	ctx := context.Background()
	flow, m := newAdminFlow()

	session := &entity.AdminSession{ChatID: testChatID, Step: entity.AdminStepPhoto, EditProductID: uuid.New()}
	m.sessionRepo.On("GetAdmin", ctx, testChatID).Return(session, nil)

	// Act
	reply, err := flow.Input(ctx, testChatID, "")

	// Assert
	require.NoError(t, err)
	assert.False(t, reply.Done)
	assert.Equal(t, promptPhotoFile, reply.Prompt)
}

// ==================== Price Parsing Tests ====================

func TestParsePrice(t *testing.T) {
	cases := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"99.90", 99.9, true},
		{"99,90", 99.9, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"free", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := parsePrice(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "input %q", tc.input)
		}
	}
}
