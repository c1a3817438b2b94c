package routes

import (
	"invoicehub/internal/api/handlers"
	"invoicehub/internal/api/middleware"
	"invoicehub/internal/app"
	"invoicehub/internal/logger"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions.
// Middleware passed in apiMiddleware runs on every /api/v1 route.
func RegisterRoutes(router *gin.Engine, app *app.Application, apiMiddleware ...gin.HandlerFunc) {
	log := logger.WithComponent("routes")

	// --- Base API Group ---
	apiV1 := router.Group("/api/v1", apiMiddleware...)

	// Create handlers
	userHandler := handlers.NewUserHandler(app.UserService)
	invoiceHandler := handlers.NewInvoiceHandler(app.InvoiceService)
	dashboardHandler := handlers.NewDashboardHandler(app.DashboardService)

	// --- Middleware ---
	authMiddleware := middleware.JWTAuthMiddleware(app.Tokens, app.Revocations)
	reminderLimit := app.ReminderLimiter.Middleware()

	// --- Register Resource Routes ---
	RegisterUserRoutes(apiV1, userHandler, authMiddleware)
	RegisterInvoiceRoutes(apiV1, invoiceHandler, authMiddleware, reminderLimit)
	RegisterDashboardRoutes(apiV1, dashboardHandler, authMiddleware)

	// --- Health Check ---
	var db handlers.Pinger
	if app.DB != nil {
		db = app.DB
	}
	router.GET("/health", handlers.HealthCheck(db))

	log.Debug().Msg("Configuring Swagger UI handler")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
