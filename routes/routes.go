package routes

import (
	"net/http"

	"quizhub/handlers"
	"quizhub/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	categoryHandler *handlers.CategoryHandler,
	quizHandler *handlers.QuizHandler,
	responseHandler *handlers.ResponseHandler,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Category routes
			categories := protected.Group("/categories")
			{
				categories.GET("", categoryHandler.GetCategories)
				categories.POST("", categoryHandler.CreateCategory)
			}

			// Quiz routes
			quizzes := protected.Group("/quizzes")
			{
				quizzes.GET("", quizHandler.GetUserQuizzes)
				quizzes.POST("", quizHandler.CreateQuiz)
				quizzes.GET("/:id", quizHandler.GetQuizByID)
				quizzes.PUT("/:id", quizHandler.UpdateQuiz)
				quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
				quizzes.POST("/:id/questions", quizHandler.AddQuestion)

				// Answer recording and history aggregation
				quizzes.POST("/:id/responses", responseHandler.RecordResponse)
				quizzes.POST("/:id/responses/complete", responseHandler.CompleteQuiz)
				quizzes.GET("/:id/leaderboard", responseHandler.GetLeaderboard)
			}

			// Question routes
			questions := protected.Group("/questions")
			{
				questions.GET("/:id", quizHandler.GetQuestionByID)
				questions.PUT("/:id", quizHandler.UpdateQuestion)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
