package rest

import (
	"context"
	"kawaiiShop/domain"
	"kawaiiShop/internal/middleware"
	"kawaiiShop/pkg/logger"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ReviewService interface {
	GetProductReviews(ctx context.Context, productID uint64) ([]domain.Review, error)
	CreateReview(ctx context.Context, review *domain.Review) (domain.Review, error)
	DeleteReview(ctx context.Context, userID uint, isAdmin bool, reviewID uint64) error
}

type ReviewHandler struct {
	reviewService ReviewService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) GetProductReviews(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviewService.GetProductReviews(ctx, productID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get product reviews",
		"reviews": reviews,
	})
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate review", "error", err)
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	review, err := h.reviewService.CreateReview(ctx, &domain.Review{
		ProductID: productID,
		UserID:    middleware.UserID(c),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Review successfully created",
		"review":  review,
	})
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	reviewID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.reviewService.DeleteReview(ctx, middleware.UserID(c), middleware.IsAdmin(c), reviewID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "review successfully deleted",
		"review_id": reviewID,
	})
}
