package postgres

import (
	"context"
	"fmt"
	"kawaiiShop/domain"
	"time"

	"gorm.io/gorm"
)

type BlindBoxRepository struct {
	DB *gorm.DB
}

func NewBlindBoxRepository(db *gorm.DB) *BlindBoxRepository {
	return &BlindBoxRepository{
		DB: db,
	}
}

func (r *BlindBoxRepository) FindByProduct(ctx context.Context, productID uint64) ([]domain.BlindBoxOutcome, error) {
	var outcomes []domain.BlindBoxOutcome
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position").
		Find(&outcomes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find blind box outcomes: %w", err)
	}

	return outcomes, nil
}

// Replace swaps the product's whole outcome table atomically.
func (r *BlindBoxRepository) Replace(ctx context.Context, productID uint64, outcomes []domain.BlindBoxOutcome) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&domain.BlindBoxOutcome{}).Error; err != nil {
			return fmt.Errorf("failed to clear outcomes: %w", err)
		}

		if len(outcomes) == 0 {
			return nil
		}

		now := time.Now()
		for i := range outcomes {
			outcomes[i].ProductID = productID
			outcomes[i].CreatedAt = now
		}

		if err := tx.Create(&outcomes).Error; err != nil {
			return fmt.Errorf("failed to store outcomes: %w", err)
		}

		return nil
	})
}
