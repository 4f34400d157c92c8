package router

import (
	"time"

	"github.com/critiq-dev/critiq/internal/handlers"
	"github.com/critiq-dev/critiq/internal/middleware"
	"github.com/critiq-dev/critiq/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", handlers.Signup)
		auth.POST("/token", handlers.Token)
	}

	users := r.Group("/users", middleware.RequireAuth())
	{
		users.GET("/me", handlers.Me)
		users.PATCH("/me", handlers.UpdateMe)

		users.GET("", handlers.ListUsers)
		users.POST("", handlers.CreateUser)
		users.GET("/:username", handlers.GetUser)
		users.PATCH("/:username", handlers.UpdateUser)
		users.DELETE("/:username", handlers.DeleteUser)
	}

	categories := r.Group("/categories", middleware.OptionalAuth())
	{
		categories.GET("", handlers.ListCategories)
		categories.POST("", handlers.CreateCategory)
		categories.DELETE("/:slug", handlers.DeleteCategory)
	}

	genres := r.Group("/genres", middleware.OptionalAuth())
	{
		genres.GET("", handlers.ListGenres)
		genres.POST("", handlers.CreateGenre)
		genres.DELETE("/:slug", handlers.DeleteGenre)
	}

	titles := r.Group("/titles", middleware.OptionalAuth())
	{
		titles.GET("", handlers.ListTitles)
		titles.POST("", handlers.CreateTitle)
		titles.GET("/:title_id", handlers.GetTitle)
		titles.PATCH("/:title_id", handlers.UpdateTitle)
		titles.DELETE("/:title_id", handlers.DeleteTitle)

		reviews := titles.Group("/:title_id/reviews")
		{
			reviews.GET("", handlers.ListReviews)
			reviews.POST("", handlers.CreateReview)
			reviews.GET("/:review_id", handlers.GetReview)
			reviews.PATCH("/:review_id", handlers.UpdateReview)
			reviews.DELETE("/:review_id", handlers.DeleteReview)

			comments := reviews.Group("/:review_id/comments")
			{
				comments.GET("", handlers.ListComments)
				comments.POST("", handlers.CreateComment)
				comments.GET("/:comment_id", handlers.GetComment)
				comments.PATCH("/:comment_id", handlers.UpdateComment)
				comments.DELETE("/:comment_id", handlers.DeleteComment)
			}
		}
	}

	return r
}
