package routes

import (
	"invoicehub/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterDashboardRoutes registers the read-only dashboard aggregates.
func RegisterDashboardRoutes(rg *gin.RouterGroup, dashboardHandler handlers.DashboardHandlerInterface, authMiddleware gin.HandlerFunc) {
	dashboard := rg.Group("/dashboard")
	dashboard.Use(authMiddleware)
	{
		dashboard.GET("/summary", dashboardHandler.Summary)
		dashboard.GET("/revenue", dashboardHandler.PaidRevenue)
	}
}
