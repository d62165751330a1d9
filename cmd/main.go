package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"indumart/internal/caching"
	"indumart/internal/handlers"
	"indumart/internal/jobs/background"
	"indumart/internal/middleware"
	"indumart/internal/repositories"
	"indumart/internal/services"
	"indumart/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive a restart")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create repositories
	productRepo := repositories.NewProductRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	adminRepo := repositories.NewAdminRepo(pool)

	// Create services
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, 900, 7*24*3600)
	productSvc := services.NewProductService(productRepo, cacheSvc)
	orderSvc := services.NewOrderService(orderRepo, cacheSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, adminRepo)
	productHandlers := handlers.NewProductHandlers(productSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categoryRepo)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, version)

	// Rate limiter shared across route groups
	rateLimiter := middleware.NewRateLimiter(cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(orderRepo, productSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")

	// Public storefront routes: catalog reads and RFQ submission. CSRF
	// covers the whole group so safe requests receive the token cookie and
	// the POST validates it.
	public := v1.Group("")
	public.Use(rateLimiter.Limit("api", middleware.APIRateLimit))
	public.Use(middleware.CSRF())
	public.GET("/products", productHandlers.ListProducts)
	public.GET("/products/:id", productHandlers.GetProduct)
	public.GET("/categories", categoryHandlers.ListCategories)
	public.GET("/csrf", func(c echo.Context) error {
		token, _ := c.Get(echoMiddleware.DefaultCSRFConfig.ContextKey).(string)
		return c.JSON(http.StatusOK, map[string]string{"csrf_token": token})
	})
	public.POST("/orders", orderHandlers.SubmitOrder)

	// Authentication routes (tight budget, no JWT required)
	auth := v1.Group("/auth")
	auth.Use(rateLimiter.Limit("auth", middleware.AuthRateLimit))
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Admin back-office routes (require JWT)
	admin := v1.Group("/admin")
	admin.Use(middleware.JWTMiddleware(authSvc))
	admin.Use(rateLimiter.Limit("admin", middleware.AdminRateLimit))

	admin.GET("/me", authHandlers.Me)

	admin.GET("/orders", orderHandlers.ListOrders)
	admin.GET("/orders/:id", orderHandlers.GetOrder)
	admin.PUT("/orders/:id", orderHandlers.UpdateOrder)

	admin.POST("/products", productHandlers.CreateProduct)
	admin.PUT("/products/:id", productHandlers.UpdateProduct)
	admin.DELETE("/products/:id", productHandlers.DeleteProduct)

	admin.POST("/categories", categoryHandlers.CreateCategory)
	admin.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	admin.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("indumart server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
