package main

import (
	"context"                               // context package is needed for Redis operations
	"log"                                   // log package is needed for logging
	"restaurant_system/internal/api"        // Custom package for API handlers
	"restaurant_system/internal/config"     // Custom package for configuration
	"restaurant_system/internal/middleware" // Custom package for middleware
	"restaurant_system/internal/storage"    // Custom package for dish image storage

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Setup dish image storage
	store, err := storage.NewDiskStorage(cfg.UploadsDir)
	if err != nil {
		logrus.Fatalf("failed to prepare uploads directory: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/users", api.RegisterHandler(db))                // Registration endpoint
	r.POST("/sessions", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Stored dish images
	r.Static("/files", cfg.UploadsDir)

	// Profile routes (protected by JWT)
	userGroup := r.Group("/users")
	userGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userGroup.PUT("/:id", api.UpdateUserHandler(db)) // Profile update endpoint

	// Dish catalog routes (protected by JWT)
	dishGroup := r.Group("/dishes")
	dishGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	dishGroup.POST("", api.CreateDishHandler(db, store, redisClient))       // Create dish endpoint
	dishGroup.GET("", api.SearchDishesHandler(db, redisClient))             // List/search dishes endpoint
	dishGroup.GET("/:id", api.GetDishHandler(db, redisClient))              // Get dish endpoint
	dishGroup.PUT("/:id", api.UpdateDishHandler(db, store, redisClient))    // Update dish endpoint
	dishGroup.DELETE("/:id", api.DeleteDishHandler(db, store, redisClient)) // Delete dish endpoint

	// Cart routes (protected by JWT)
	cartGroup := r.Group("/carts")
	cartGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	cartGroup.POST("", api.CreateCartHandler(db))       // Create cart endpoint
	cartGroup.GET("", api.ListUserCartsHandler(db))     // List own carts endpoint
	cartGroup.GET("/:id", api.GetCartHandler(db))       // Get cart endpoint
	cartGroup.PUT("/:id", api.UpdateCartHandler(db))    // Update cart endpoint
	cartGroup.DELETE("/:id", api.DeleteCartHandler(db)) // Delete cart endpoint

	// Order routes (protected by JWT)
	orderGroup := r.Group("/orders")
	orderGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	orderGroup.POST("", api.CreateOrderHandler(db))       // Create order endpoint
	orderGroup.GET("", api.ListOrdersHandler(db))         // List orders endpoint (role-branched)
	orderGroup.GET("/:id", api.GetOrderHandler(db))       // Get order endpoint
	orderGroup.PUT("/:id", api.UpdateOrderHandler(db))    // Update order endpoint
	orderGroup.DELETE("/:id", api.DeleteOrderHandler(db)) // Delete order endpoint

	// Admin-only order status route
	orderGroup.PATCH("/:id/status", middleware.AdminOnlyMiddleware(db), api.UpdateOrderStatusHandler(db))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
