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

type BlindBoxService interface {
	Purchase(ctx context.Context, userID uint, productID uint64, quantity int) (domain.BlindBoxPurchase, error)
	GetOutcomes(ctx context.Context, productID uint64) ([]domain.BlindBoxOutcome, error)
	ReplaceOutcomes(ctx context.Context, productID uint64, outcomes []domain.BlindBoxOutcome) ([]domain.BlindBoxOutcome, error)
}

type BlindBoxHandler struct {
	blindBoxService BlindBoxService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewBlindBoxHandler(blindBoxService BlindBoxService) *BlindBoxHandler {
	return &BlindBoxHandler{
		blindBoxService: blindBoxService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type PurchaseRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0,lte=100"`
}

type OutcomeInput struct {
	Name   string  `json:"name" validate:"required"`
	Image  string  `json:"image"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

type OutcomesRequest struct {
	Outcomes []OutcomeInput `json:"outcomes" validate:"required,min=1,dive"`
}

// Purchase buys quantity boxes and reveals their contents.
func (h *BlindBoxHandler) Purchase(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req PurchaseRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate purchase request", "error", err)
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	purchase, err := h.blindBoxService.Purchase(ctx, middleware.UserID(c), productID, req.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, purchase)
}

func (h *BlindBoxHandler) GetOutcomes(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	outcomes, err := h.blindBoxService.GetOutcomes(ctx, productID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get blind box outcomes",
		"outcomes": outcomes,
	})
}

func (h *BlindBoxHandler) ReplaceOutcomes(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req OutcomesRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate outcome table", "error", err)
		return badRequest(c, err)
	}

	outcomes := make([]domain.BlindBoxOutcome, len(req.Outcomes))
	for i, o := range req.Outcomes {
		outcomes[i] = domain.BlindBoxOutcome{Name: o.Name, Image: o.Image, Weight: o.Weight}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stored, err := h.blindBoxService.ReplaceOutcomes(ctx, productID, outcomes)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Blind box outcomes updated",
		"outcomes": stored,
	})
}
