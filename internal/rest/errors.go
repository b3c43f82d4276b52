package rest

import (
	"context"
	"errors"
	"kawaiiShop/business/blindbox"
	"kawaiiShop/business/modelproxy"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrCategoryNotFound, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrCartItemNotFound, http.StatusNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrReviewNotFound, http.StatusNotFound},

	{domain.ErrInvalidCredential, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrEmailExists, http.StatusConflict},
	{domain.ErrCategoryExists, http.StatusConflict},
	{domain.ErrCategoryInUse, http.StatusConflict},
	{domain.ErrOutOfStock, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrAlreadyReviewed, http.StatusConflict},

	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrNotBlindBox, http.StatusBadRequest},
	{domain.ErrBlindBoxInCart, http.StatusBadRequest},
	{domain.ErrEmptyCart, http.StatusBadRequest},
	{blindbox.ErrInvalidDistribution, http.StatusBadRequest},
	{blindbox.ErrInvalidQuantity, http.StatusBadRequest},
	{modelproxy.ErrInvalidToken, http.StatusBadRequest},
	{modelproxy.ErrInvalidModelURL, http.StatusBadRequest},

	{modelproxy.ErrUpstream, http.StatusBadGateway},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// errorResponse writes err with its mapped status. Server side failures are
// logged and their detail is not sent to the client.
func errorResponse(c echo.Context, err error) error {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(status, ResponseError{Message: http.StatusText(status)})
	}

	return c.JSON(status, ResponseError{Message: err.Error()})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
}

func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Invalidf("invalid %s", name)
	}
	return id, nil
}
