// controllers/dashboard_controller.go
package controllers

import (
	"resqlink/middleware"
	"resqlink/services"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboardService *services.DashboardService
	emergencyService *services.EmergencyService
}

func NewDashboardController(dashboardService *services.DashboardService, emergencyService *services.EmergencyService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		emergencyService: emergencyService,
	}
}

// GetDashboard returns the responder dashboard: counters plus the active
// emergency feed.
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	dashboard, err := dc.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Dashboard retrieved", dashboard)
}

// GetPublicStats returns the unauthenticated landing page statistics.
func (dc *DashboardController) GetPublicStats(c *gin.Context) {
	stats, err := dc.dashboardService.GetPublicStats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Statistics retrieved", stats)
}

// MyEmergencies lists emergencies reported by the caller.
func (dc *DashboardController) MyEmergencies(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	emergencies, err := dc.emergencyService.ListByReporter(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergencies retrieved", emergencies)
}

// AssignedEmergencies lists emergencies the calling volunteer is working.
func (dc *DashboardController) AssignedEmergencies(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	emergencies, err := dc.emergencyService.ListByVolunteer(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Assigned emergencies retrieved", emergencies)
}
