package review

import (
	"context"
	"errors"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ReviewRepository contract interface
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id uint64) (domain.Review, error)
	FindByProduct(ctx context.Context, productID uint64) ([]domain.Review, error)
	Delete(ctx context.Context, id uint64) error
}

type ProductFinder interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

type reviewService struct {
	reviewRepo  ReviewRepository
	productRepo ProductFinder
	validate    *validator.Validate
}

func NewReviewService(reviewRepo ReviewRepository, productRepo ProductFinder, validate *validator.Validate) *reviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		validate:    validate,
	}
}

func (s *reviewService) GetProductReviews(ctx context.Context, productID uint64) ([]domain.Review, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByProduct(ctx, productID)
	if err != nil {
		logger.Error("Failed to get product reviews", "product_id", productID, "error", err)
		return nil, err
	}

	return reviews, nil
}

// CreateReview stores one review per user and product.
func (s *reviewService) CreateReview(ctx context.Context, review *domain.Review) (domain.Review, error) {
	if err := s.validate.Var(review.Rating, "min=1,max=5"); err != nil {
		return domain.Review{}, domain.Invalid("rating must be between 1 and 5")
	}

	review.Comment = strings.TrimSpace(review.Comment)
	if err := s.validate.Var(review.Comment, "max=2000"); err != nil {
		return domain.Review{}, domain.Invalid("comment must be at most 2000 characters")
	}

	if _, err := s.productRepo.FindByID(ctx, review.ProductID); err != nil {
		return domain.Review{}, err
	}

	review.ID = 0
	review.CreatedAt = time.Now()

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if !errors.Is(err, domain.ErrAlreadyReviewed) {
			logger.Error("Failed to create review", "product_id", review.ProductID, "user_id", review.UserID, "error", err)
		}
		return domain.Review{}, err
	}

	return *review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID uint, isAdmin bool, reviewID uint64) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if !isAdmin && review.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		logger.Error("Failed to delete review", "review_id", reviewID, "error", err)
		return err
	}

	return nil
}
