package postgres

import (
	"context"
	"errors"
	"fmt"
	"kawaiiShop/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{
		DB: db,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if err := r.DB.WithContext(ctx).Omit("User").Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint64) (domain.Review, error) {
	var review domain.Review
	if err := r.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Review{}, domain.ErrReviewNotFound
		}
		return domain.Review{}, err
	}

	return review, nil
}

func (r *ReviewRepository) FindByProduct(ctx context.Context, productID uint64) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}

	return reviews, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uint64) error {
	result := r.DB.WithContext(ctx).Delete(&domain.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}

	return nil
}

// Summaries aggregates rating average and count per product. Products
// without reviews are absent from the result.
func (r *ReviewRepository) Summaries(ctx context.Context, productIDs []uint64) (map[uint64]domain.RatingSummary, error) {
	out := make(map[uint64]domain.RatingSummary, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []domain.RatingSummary
	err := r.DB.WithContext(ctx).Model(&domain.Review{}).
		Select("product_id, AVG(rating) AS average_rating, COUNT(*) AS review_count").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	for _, row := range rows {
		out[row.ProductID] = row
	}

	return out, nil
}
