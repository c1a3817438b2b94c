package routes

import (
	"invoicehub/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers the auth and profile routes.
func RegisterUserRoutes(rg *gin.RouterGroup, userHandler handlers.UserHandlerInterface, authMiddleware gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", userHandler.Register)
		authGroup.POST("/login", userHandler.Login)
		authGroup.POST("/logout", authMiddleware, userHandler.Logout)
	}

	users := rg.Group("/users")
	users.Use(authMiddleware)
	{
		users.GET("/me", userHandler.GetProfile)
		users.PUT("/me/onboarding", userHandler.Onboard)
	}
}
