package repository

import (
	"context"
	"errors"

	"lavka/internal/app/storefront/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// List получает последние добавленные товары
func (r *productRepository) List(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// ListByCategory получает активные товары категории отсортированные по имени
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name ASC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// ListWithoutImage получает товары без изображения (ни file_id, ни URL)
func (r *productRepository) ListWithoutImage(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("image_file_id = '' AND image_url = ''").
		Order("created_at DESC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// UpdateFields частично обновляет товар и возвращает свежую запись
func (r *productRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*entity.Product, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	return r.GetByID(ctx, id)
}

// SetImageFileID сохраняет file_id изображения товара
func (r *productRepository) SetImageFileID(ctx context.Context, id uuid.UUID, fileID string) (*entity.Product, error) {
	return r.UpdateFields(ctx, id, map[string]interface{}{"image_file_id": fileID})
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
