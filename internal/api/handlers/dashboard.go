package handlers

import (
	"net/http"

	"invoicehub/internal/services"
	"invoicehub/internal/transport/dto"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary godoc
// @Summary      Dashboard totals
// @Description  Invoice counts by status, with paid revenue and outstanding amounts per currency.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object}  dto.DashboardSummaryResponse
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Router       /dashboard/summary [get]
// @Security     BearerAuth
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := h.dashboardService.Summary(c.Request.Context(), &dto.DashboardSummaryRequest{UserId: userID})
	if err != nil {
		respondError(c, err, "Not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaidRevenue godoc
// @Summary      Paid revenue per day
// @Description  Paid totals per UTC day and currency over the last `days` days, oldest first.
// @Tags         dashboard
// @Produce      json
// @Param        days query int false "Window in days (1-365)" default(30)
// @Success      200 {object}  dto.RevenueResponse
// @Failure      400 {object}  map[string]any "Validation failed"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Router       /dashboard/revenue [get]
// @Security     BearerAuth
func (h *DashboardHandler) PaidRevenue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.RevenueRequest
	if !bindQuery(c, &req) {
		return
	}
	req.UserId = userID

	resp, err := h.dashboardService.PaidRevenue(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}
