package postgres

import (
	"context"
	"errors"
	"fmt"
	"kawaiiShop/domain"
	"time"

	"gorm.io/gorm"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		DB: db,
	}
}

// FindByUser loads the user's cart lines with their products. Lines whose
// product was deleted come back with a nil Product.
func (r *CartRepository) FindByUser(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.DB.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return items, nil
}

func (r *CartRepository) FindItem(ctx context.Context, userID uint, itemID uint64) (domain.CartItem, error) {
	var item domain.CartItem
	err := r.DB.WithContext(ctx).Preload("Product").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CartItem{}, domain.ErrCartItemNotFound
		}
		return domain.CartItem{}, err
	}

	return item, nil
}

func (r *CartRepository) Create(ctx context.Context, item *domain.CartItem) error {
	if err := r.DB.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, itemID uint64, quantity int) error {
	result := r.DB.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID uint, itemID uint64) error {
	result := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&domain.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}
