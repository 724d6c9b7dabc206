package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vibblo-api/config"
	"vibblo-api/controllers"
	"vibblo-api/middleware"
	"vibblo-api/repositories"
	"vibblo-api/services"
)

func SetupRoutes(r *gin.Engine, store repositories.Store, cfg *config.Config, emailService *services.EmailService, log logrus.FieldLogger) {
	// Services
	notificationService := services.NewNotificationService(store, log)
	friendService := services.NewFriendService(store, notificationService, log)

	// Controllers
	authController := controllers.NewAuthController(store, cfg.JWTSecret, emailService, log)
	userController := controllers.NewUserController(store)
	friendController := controllers.NewFriendController(friendService)
	notificationController := controllers.NewNotificationController(store)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.POST("/verify-code", authController.VerifyCode)
		auth.POST("/resend-code", authController.ResendVerificationCode)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.GET("/:id", userController.GetUser)
		}

		// Friend routes
		friends := protected.Group("/friends")
		{
			friends.GET("", friendController.GetFriends)
			friends.DELETE("/:user_id", friendController.Unfriend)
		}

		// Friend request routes
		requests := protected.Group("/friend-requests")
		{
			requests.POST("/send/:user_id", friendController.SendFriendRequest)
			requests.POST("/accept/:request_id", friendController.AcceptFriendRequest)
			requests.DELETE("/reject/:request_id", friendController.RejectFriendRequest)
			requests.DELETE("/cancel/:request_id", friendController.CancelSentRequest)
			requests.GET("/sent", friendController.GetSentRequests)
			requests.GET("/received", friendController.GetReceivedRequests)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationController.GetNotifications)
			notifications.GET("/stats", notificationController.GetNotificationStats)
			notifications.PUT("/:id/read", notificationController.MarkAsRead)
			notifications.PUT("/read-all", notificationController.MarkAllAsRead)
			notifications.DELETE("/:id", notificationController.DeleteNotification)
		}
	}
}
