// controllers/emergency_controller.go
package controllers

import (
	"resqlink/middleware"
	"resqlink/models"
	"resqlink/services"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
)

type EmergencyController struct {
	emergencyService *services.EmergencyService
	validator        *utils.ValidationService
}

func NewEmergencyController(emergencyService *services.EmergencyService, validator *utils.ValidationService) *EmergencyController {
	return &EmergencyController{
		emergencyService: emergencyService,
		validator:        validator,
	}
}

// Create reports a new emergency
// @Summary Report an emergency
// @Tags Emergencies
// @Accept json
// @Produce json
// @Param request body models.CreateEmergencyRequest true "Emergency report"
// @Success 201 {object} models.APIResponse{data=models.Emergency}
// @Security BearerAuth
// @Router /emergencies [post]
func (ec *EmergencyController) Create(c *gin.Context) {
	var req models.CreateEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := ec.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	emergency, err := ec.emergencyService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Emergency reported", emergency)
}

// List returns the emergency feed
// @Summary List emergencies
// @Tags Emergencies
// @Param status query string false "Filter by status"
// @Param urgency query string false "Filter by urgency"
// @Security BearerAuth
// @Router /emergencies [get]
func (ec *EmergencyController) List(c *gin.Context) {
	var query models.ListEmergenciesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := ec.validator.ValidateStruct(query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	emergencies, err := ec.emergencyService.List(c.Request.Context(), &query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergencies retrieved", emergencies)
}

// Nearby returns open emergencies close to the caller
// @Summary Find nearby emergencies
// @Tags Emergencies
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param maxDistance query int false "Radius in meters"
// @Security BearerAuth
// @Router /emergencies/nearby [get]
func (ec *EmergencyController) Nearby(c *gin.Context) {
	if c.Query("longitude") == "" || c.Query("latitude") == "" {
		utils.BadRequestResponse(c, "Please provide longitude and latitude")
		return
	}

	var query models.NearbyEmergenciesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := ec.validator.ValidateStruct(query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	emergencies, err := ec.emergencyService.Nearby(c.Request.Context(), &query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Nearby emergencies retrieved", emergencies)
}

// GetByID returns a single emergency with reporter and volunteer details
// @Summary Get emergency
// @Tags Emergencies
// @Param id path string true "Emergency ID"
// @Security BearerAuth
// @Router /emergencies/{id} [get]
func (ec *EmergencyController) GetByID(c *gin.Context) {
	emergency, err := ec.emergencyService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency retrieved", emergency)
}

// Respond claims the emergency for the calling volunteer
// @Summary Respond to an emergency
// @Tags Emergencies
// @Param id path string true "Emergency ID"
// @Security BearerAuth
// @Router /emergencies/{id}/respond [post]
func (ec *EmergencyController) Respond(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	emergency, err := ec.emergencyService.Respond(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Responding to emergency", emergency)
}

// UpdateStatus advances the emergency lifecycle
// @Summary Update emergency status
// @Tags Emergencies
// @Param id path string true "Emergency ID"
// @Param request body models.UpdateStatusRequest true "Target status"
// @Security BearerAuth
// @Router /emergencies/{id}/status [put]
func (ec *EmergencyController) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	emergency, err := ec.emergencyService.UpdateStatus(c.Request.Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", emergency)
}

// AddNote appends a note to the emergency timeline
// @Summary Add a note
// @Tags Emergencies
// @Param id path string true "Emergency ID"
// @Param request body models.AddNoteRequest true "Note"
// @Security BearerAuth
// @Router /emergencies/{id}/notes [post]
func (ec *EmergencyController) AddNote(c *gin.Context) {
	var req models.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := ec.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	emergency, err := ec.emergencyService.AddNote(c.Request.Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Note added", emergency)
}
