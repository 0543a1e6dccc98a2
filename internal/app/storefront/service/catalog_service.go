package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lavka/internal/app/storefront/entity"
	"lavka/internal/app/storefront/infrastructure"
	"lavka/internal/app/storefront/repository"
	"lavka/internal/app/storefront/util"
	"lavka/pkg/logger"

	"github.com/google/uuid"
)

// DefaultProductLimit ограничивает размер витрины, когда лимит не задан
const DefaultProductLimit = 50

// CatalogService обрабатывает бизнес-логику каталога товаров
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	categoryRepo  repository.CategoryRepository    // Репозиторий для работы с категориями в PostgreSQL
	productRepo   repository.ProductRepository     // Репозиторий для работы с товарами в PostgreSQL
	cache         util.CategoryCache               // Кеш категорий в Redis
	kafkaProducer infrastructure.MessagePublisher  // Producer для отправки событий о товарах
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	kafkaProducer infrastructure.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// === CATEGORIES ===

// CreateCategory создает новую категорию и инвалидирует кеш
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	// Инвалидируем кеш категорий чтобы при следующем запросе загрузить свежие данные
	if err := s.cache.DeleteCategories(ctx); err != nil {
		// Категория уже создана, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}

	return category, nil
}

// GetCategory получает категорию по ID из PostgreSQL
// Не использует кеш, так как запрашивается конкретная категория
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetAllCategories получает все категории с кешированием в Redis
// Сначала проверяет кеш, если нет - загружает из БД и кеширует на 1 час
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		// Cache hit - возвращаем данные из кеша
		return categories, nil
	}

	// Cache miss - загружаем из PostgreSQL
	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, time.Hour); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// DeleteCategory удаляет категорию вместе с её товарами и инвалидирует кеш
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}

	return nil
}

// === PRODUCTS ===

// CreateProduct создает новый товар
// Проверяет существование категории перед созданием
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	product := &entity.Product{
		ID:          uuid.New(),
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price, // Цена в базовой валюте
		ImageURL:    req.ImageURL,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	// При создании товара событие не отправляется
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct получает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetProducts получает последние добавленные товары
// При limit <= 0 применяется DefaultProductLimit
func (s *CatalogService) GetProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}

	products, err := s.productRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetProductsByCategory получает активные товары категории для витрины
func (s *CatalogService) GetProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by category: %w", err)
	}

	return products, nil
}

// GetProductsWithoutImage получает товары без загруженного изображения
// Используется админским диалогом привязки фотографий
func (s *CatalogService) GetProductsWithoutImage(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.ListWithoutImage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products without image: %w", err)
	}

	return products, nil
}

// UpdateProduct частично обновляет товар и отправляет PRODUCT_UPDATED при изменении цены
// Обновляются только переданные поля
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	// Запоминаем старую цену для проверки изменений
	oldPrice := product.Price

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.CategoryID != nil {
		// Проверяем существование новой категории
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
		fields["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) == 0 {
		return product, nil
	}

	updated, err := s.productRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// ВАЖНО: если цена изменилась, отправляем событие PRODUCT_UPDATED в Kafka
	// Событие отправляется только при смене цены
	if updated.Price != oldPrice {
		event := entity.ProductEvent{
			EventType: "PRODUCT_UPDATED",
			ProductID: updated.ID,
			Name:      updated.Name,
			OldPrice:  oldPrice,
			Price:     updated.Price,
			Timestamp: time.Now(),
		}
		if err := s.publishProductEvent(ctx, event); err != nil {
			// Товар уже обновлен, проблемы с Kafka не критичны для основной операции
			logger.Warn().Err(err).Str("product_id", updated.ID.String()).Msg("failed to publish product updated event")
		}
	}

	return updated, nil
}

// SetProductImage привязывает к товару изображение, полученное из мессенджера
func (s *CatalogService) SetProductImage(ctx context.Context, id uuid.UUID, fileID string) (*entity.Product, error) {
	product, err := s.productRepo.SetImageFileID(ctx, id, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to set product image: %w", err)
	}

	return product, nil
}

// DeleteProduct удаляет товар
// Позиции корзин с этим товаром пропадают из выдачи, снапшоты заказов не трогаем
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// publishProductEvent отправляет событие о товаре в Kafka
// Key - это ProductID для правильного партиционирования
func (s *CatalogService) publishProductEvent(ctx context.Context, event entity.ProductEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
