package rest

import (
	"context"
	"kawaiiShop/domain"
	"kawaiiShop/internal/middleware"
	"kawaiiShop/pkg/logger"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		timeout       time.Duration
	}

	OrdersService interface {
		Checkout(ctx context.Context, userID uint) (domain.Order, error)
		ListOrders(ctx context.Context, userID uint, isAdmin bool) ([]domain.Order, error)
		GetOrder(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error)
		Pay(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error)
		Cancel(ctx context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error)
		UpdateStatus(ctx context.Context, orderID uint64, status string) (domain.Order, error)
	}

	StatusInput struct {
		Status string `json:"status" validate:"required"`
	}
)

func NewOrdersHandler(ordersService OrdersService) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		timeout:       10 * time.Second,
	}
}

func (h *OrdersHandler) Checkout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.Checkout(ctx, middleware.UserID(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.ordersService.ListOrders(ctx, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *OrdersHandler) GetOrder(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, middleware.UserID(c), middleware.IsAdmin(c), orderID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

// PayOrder settles a pending order without a payment gateway.
func (h *OrdersHandler) PayOrder(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.Pay(ctx, middleware.UserID(c), middleware.IsAdmin(c), orderID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) CancelOrder(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.Cancel(ctx, middleware.UserID(c), middleware.IsAdmin(c), orderID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var request StatusInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return badRequest(c, err)
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate order status", "error", err)
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, orderID, request.Status)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}
