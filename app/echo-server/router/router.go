package router

import (
	"kawaiiShop/internal/middleware"
	"kawaiiShop/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/me", handler.Me, authRequired)

	users.PUT("/:id", handler.UpdateUser, authRequired, middleware.SelfOrAdmin())
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategoryByID)
	categories.POST("", handler.CreateCategory, authRequired, adminOnly)
	categories.PUT("/:id", handler.UpdateCategory, authRequired, adminOnly)
	categories.DELETE("/:id", handler.DeleteCategory, authRequired, adminOnly)
}

func SetupProductRoutes(
	api *echo.Group,
	handler *rest.ProductHandler,
	blindBoxHandler *rest.BlindBoxHandler,
	reviewHandler *rest.ReviewHandler,
	authRequired echo.MiddlewareFunc,
	adminOnly echo.MiddlewareFunc,
) {
	products := api.Group("/products")

	products.GET("", handler.ListProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, authRequired, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)

	products.GET("/:id/outcomes", blindBoxHandler.GetOutcomes, authRequired, adminOnly)
	products.PUT("/:id/outcomes", blindBoxHandler.ReplaceOutcomes, authRequired, adminOnly)

	products.GET("/:id/reviews", reviewHandler.GetProductReviews)
	products.POST("/:id/reviews", reviewHandler.CreateReview, authRequired)
}

func SetupReviewRoutes(api *echo.Group, handler *rest.ReviewHandler, authRequired echo.MiddlewareFunc) {
	api.DELETE("/reviews/:id", handler.DeleteReview, authRequired)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, authRequired echo.MiddlewareFunc) {
	cart := api.Group("/cart", authRequired)

	cart.GET("", handler.GetCart)
	cart.POST("/items", handler.AddItem)
	cart.PUT("/items/:id", handler.UpdateItem)
	cart.DELETE("/items/:id", handler.RemoveItem)
	cart.DELETE("", handler.ClearCart)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)

	orders.POST("/checkout", ordersHandler.Checkout)
	orders.GET("", ordersHandler.GetAllOrders)
	orders.GET("/:id", ordersHandler.GetOrder)
	orders.POST("/:id/pay", ordersHandler.PayOrder)
	orders.POST("/:id/cancel", ordersHandler.CancelOrder)
	orders.PUT("/:id/status", ordersHandler.UpdateStatus, adminOnly)
}

func SetBlindBoxRoutes(api *echo.Group, handler *rest.BlindBoxHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/blindbox/:id/purchase", handler.Purchase, authRequired)
}

// SetModelRoutes is public: tokens are sealed server side, so only URLs the
// catalog handed out can be fetched.
func SetModelRoutes(api *echo.Group, handler *rest.ModelProxyHandler) {
	api.GET("/models/proxy", handler.Proxy)
}
