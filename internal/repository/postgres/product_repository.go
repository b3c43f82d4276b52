package postgres

import (
	"context"
	"errors"
	"fmt"
	"kawaiiShop/domain"
	"strings"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// productFilter applies the WHERE part of a listing filter.
func productFilter(filter domain.ProductFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.CategoryID > 0 {
			db = db.Where("category_id = ?", filter.CategoryID)
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			like := "%" + q + "%"
			db = db.Where("name ILIKE ? OR description ILIKE ?", like, like)
		}
		if filter.MinPrice > 0 {
			db = db.Where("price >= ?", filter.MinPrice)
		}
		if filter.MaxPrice > 0 {
			db = db.Where("price <= ?", filter.MaxPrice)
		}
		return db
	}
}

// FindAll returns one page of products matching the filter plus the total
// number of matches. The filter is expected to be normalized already.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.Product{}).Scopes(productFilter(filter)).Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := r.DB.WithContext(ctx).Scopes(productFilter(filter))
	switch filter.Sort {
	case domain.SortPriceAsc:
		query = query.Order("price ASC").Order("id ASC")
	case domain.SortPriceDesc:
		query = query.Order("price DESC").Order("id ASC")
	default:
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var products []domain.Product
	err = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"category_id":  product.CategoryID,
		"name":         product.Name,
		"description":  product.Description,
		"price":        product.Price,
		"stock":        product.Stock,
		"image_url":    product.ImageURL,
		"model_url":    product.ModelURL,
		"is_blind_box": product.IsBlindBox,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}
