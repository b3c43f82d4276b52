package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpmetrics "kawaiiShop/app/echo-server/metrics"
	"kawaiiShop/app/echo-server/router"
	"kawaiiShop/business/blindbox"
	"kawaiiShop/business/cart"
	"kawaiiShop/business/category"
	"kawaiiShop/business/modelproxy"
	"kawaiiShop/business/orders"
	"kawaiiShop/business/product"
	"kawaiiShop/business/review"
	userService "kawaiiShop/business/user"
	"kawaiiShop/internal/middleware"
	"kawaiiShop/internal/repository/asset"
	"kawaiiShop/internal/repository/notification"
	psqlRepo "kawaiiShop/internal/repository/postgres"
	redisRepo "kawaiiShop/internal/repository/redis"
	"kawaiiShop/internal/rest"
	"kawaiiShop/pkg/config"
	"kawaiiShop/pkg/database"
	redisClient "kawaiiShop/pkg/database/redis"
	"kawaiiShop/pkg/logger"
	"kawaiiShop/pkg/metrics"
	"kawaiiShop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting Kawaii Shop", "version", cfg.App.Version, "env", cfg.App.Environment)

	utils.ConfigureJWT(cfg.JWT.SecretKey, cfg.JWT.TTL)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	metrics.Init()
	httpmetrics.Init()

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	reviewRepo := psqlRepo.NewReviewRepository(db)
	outcomeRepo := psqlRepo.NewBlindBoxRepository(db)
	sessionRepo := redisRepo.NewSessionRepository(rdb)
	modelRepo := asset.NewModelRepository(asset.ModelConfig{
		Timeout:  cfg.Shop.ModelProxyTimeout,
		MaxBytes: cfg.Shop.ModelProxyMaxBytes,
	})

	// Order confirmations are optional
	var notifier orders.NotificationRepository
	if cfg.Mailjet.Enabled() {
		notifier = notification.NewMailjetRepository(
			notification.MailjetConfig{
				MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
				MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
				MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
				MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
				MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
			},
		)
	} else {
		logger.Warn("Mailjet not configured, order confirmations disabled")
	}

	// Init service
	modelProxyService := modelproxy.NewModelProxyService(cfg.Shop.AssetProxyKey, modelRepo)
	userSvc := userService.NewUserService(userRepo, sessionRepo, validate)
	categoryService := category.NewCategoryService(categoryRepo)
	productService := product.NewProductService(productRepo, categoryRepo, reviewRepo, modelProxyService)
	cartService := cart.NewCartService(cartRepo, productRepo, cfg.Shop.CharmPrice)
	ordersService := orders.NewOrdersService(ordersRepo, cartRepo, userRepo, notifier, cfg.Shop.CharmPrice)
	reviewService := review.NewReviewService(reviewRepo, productRepo, validate)
	blindBoxService := blindbox.NewBlindBoxService(productRepo, outcomeRepo, ordersRepo, blindbox.DefaultSource())

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	categoryHandler := rest.NewCategoryHandler(categoryService)
	productHandler := rest.NewProductHandler(productService)
	cartHandler := rest.NewCartHandler(cartService)
	ordersHandler := rest.NewOrdersHandler(ordersService)
	reviewHandler := rest.NewReviewHandler(reviewService)
	blindBoxHandler := rest.NewBlindBoxHandler(blindBoxService)
	modelProxyHandler := rest.NewModelProxyHandler(modelProxyService, cfg.Shop.ModelProxyTimeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(httpmetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authRequired := middleware.AuthMiddleware(sessionRepo)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupCategoryRoutes(api, categoryHandler, authRequired, adminOnly)
	router.SetupProductRoutes(api, productHandler, blindBoxHandler, reviewHandler, authRequired, adminOnly)
	router.SetupReviewRoutes(api, reviewHandler, authRequired)
	router.SetupCartRoutes(api, cartHandler, authRequired)
	router.SetOrdersRoutes(api, ordersHandler, authRequired, adminOnly)
	router.SetBlindBoxRoutes(api, blindBoxHandler, authRequired)
	router.SetModelRoutes(api, modelProxyHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
