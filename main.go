package main

import (
	"log"

	"quizhub/config"
	"quizhub/handlers"
	"quizhub/logger"
	"quizhub/middleware"
	"quizhub/models"
	"quizhub/routes"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLogger.Sync()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		appLogger.Fatal("failed to connect to database", "error", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Quiz{},
		&models.Question{},
		&models.Choice{},
		&models.Response{},
		&models.UserQuizHistory{},
	)
	if err != nil {
		appLogger.Fatal("failed to migrate database", "error", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	categoryService := services.NewCategoryService(db)
	quizService := services.NewQuizService(db)
	responseService := services.NewResponseService(db, redisClient, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	quizHandler := handlers.NewQuizHandler(quizService)
	responseHandler := handlers.NewResponseHandler(responseService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, categoryHandler, quizHandler, responseHandler, cfg.JWTSecret)

	// Start server
	appLogger.Info("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		appLogger.Fatal("failed to start server", "error", err)
	}
}
