package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halil/studentdesk/internal/app/controllers"
	"github.com/halil/studentdesk/internal/app/models"
	"github.com/halil/studentdesk/internal/middleware"
)

// SetupRouter registers all API routes under the /api prefix
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
	})

	// Authentication endpoints. The credential-accepting routes sit behind a
	// strict rate limit to slow down brute forcing.
	auth := api.Group("/auth")
	{
		strict := middleware.RateLimitByIP(middleware.StrictLimit)

		auth.POST("/signup", strict, authController.Signup)
		auth.POST("/login", strict, authController.Login)
		auth.POST("/forgot-password", strict, authController.ForgotPassword)
		auth.POST("/reset-password", strict, authController.ResetPassword)

		authed := auth.Group("")
		authed.Use(authMiddleware.JWTAuth())
		{
			authed.GET("/me", authController.GetMe)
			authed.PUT("/update-password", authController.UpdatePassword)
		}
	}

	// Student records require an authenticated caller with the authority role
	students := api.Group("/students")
	students.Use(
		middleware.RateLimitByIP(middleware.ModerateLimit),
		authMiddleware.JWTAuth(),
		authMiddleware.RoleRequired(string(models.RoleAuthority)),
	)
	{
		students.POST("", studentController.CreateStudent)
		students.GET("", studentController.ListStudents)
		students.GET("/:id", studentController.GetStudent)
		students.PUT("/:id", studentController.UpdateStudent)
		students.DELETE("/:id", studentController.DeleteStudent)
		students.POST("/upload-image", studentController.UploadImage)
	}
}
