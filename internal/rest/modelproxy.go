package rest

import (
	"context"
	"kawaiiShop/business/modelproxy"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type ModelProxyService interface {
	Fetch(ctx context.Context, token string) (modelproxy.Asset, error)
}

type ModelProxyHandler struct {
	modelProxyService ModelProxyService
	timeout           time.Duration
}

func NewModelProxyHandler(modelProxyService ModelProxyService, timeout time.Duration) *ModelProxyHandler {
	return &ModelProxyHandler{
		modelProxyService: modelProxyService,
		timeout:           timeout,
	}
}

// Proxy streams a sealed third-party 3D asset so browsers can load it
// without the host's CORS headers.
func (h *ModelProxyHandler) Proxy(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: modelproxy.ErrInvalidToken.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	asset, err := h.modelProxyService.Fetch(ctx, token)
	if err != nil {
		return errorResponse(c, err)
	}
	defer asset.Body.Close()

	header := c.Response().Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Cache-Control", "public, max-age=3600")
	if asset.ContentLength > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(asset.ContentLength, 10))
	}

	return c.Stream(http.StatusOK, asset.ContentType, asset.Body)
}
