// controllers/admin_controller.go
package controllers

import (
	"resqlink/models"
	"resqlink/services"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	adminService *services.AdminService
	validator    *utils.ValidationService
}

func NewAdminController(adminService *services.AdminService, validator *utils.ValidationService) *AdminController {
	return &AdminController{
		adminService: adminService,
		validator:    validator,
	}
}

func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetStats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Statistics retrieved", stats)
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.adminService.ListUsers(c.Request.Context(), c.Query("userType"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Users retrieved", users)
}

func (ac *AdminController) UpdateUser(c *gin.Context) {
	var req models.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	user, err := ac.adminService.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User updated", user)
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	if err := ac.adminService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User deleted", nil)
}

func (ac *AdminController) ListEmergencies(c *gin.Context) {
	emergencies, err := ac.adminService.ListAllEmergencies(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergencies retrieved", emergencies)
}

func (ac *AdminController) DeleteEmergency(c *gin.Context) {
	if err := ac.adminService.DeleteEmergency(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency deleted", nil)
}
