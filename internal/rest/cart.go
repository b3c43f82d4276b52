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

type CartService interface {
	GetCart(ctx context.Context, userID uint) (domain.Cart, error)
	AddItem(ctx context.Context, userID uint, productID uint64, quantity int, charms []string) (domain.Cart, error)
	UpdateItem(ctx context.Context, userID uint, itemID uint64, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, userID uint, itemID uint64) (domain.Cart, error)
	ClearCart(ctx context.Context, userID uint) error
}

type CartHandler struct {
	cartService CartService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
		timeout:     10 * time.Second,
	}
}

type AddCartItemRequest struct {
	ProductID uint64   `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"required,gt=0"`
	Charms    []string `json:"charms" validate:"max=7"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.GetCart(ctx, middleware.UserID(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req AddCartItemRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate cart item", "error", err)
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.AddItem(ctx, middleware.UserID(c), req.ProductID, req.Quantity, req.Charms)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, cart)
}

// UpdateItem sets a line's quantity; 0 removes the line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate cart item", "error", err)
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.UpdateItem(ctx, middleware.UserID(c), itemID, *req.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.RemoveItem(ctx, middleware.UserID(c), itemID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.ClearCart(ctx, middleware.UserID(c)); err != nil {
		return errorResponse(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
