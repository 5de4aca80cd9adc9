// controllers/user_controller.go
package controllers

import (
	"resqlink/middleware"
	"resqlink/models"
	"resqlink/services"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
	validator   *utils.ValidationService
}

func NewUserController(userService *services.UserService, validator *utils.ValidationService) *UserController {
	return &UserController{
		userService: userService,
		validator:   validator,
	}
}

// Me returns the caller's own user record.
func (uc *UserController) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := uc.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", user)
}

// UpdateFCMToken registers the caller's device push token.
func (uc *UserController) UpdateFCMToken(c *gin.Context) {
	var req models.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := uc.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	if err := uc.userService.UpdateFCMToken(c.Request.Context(), userID, req.FCMToken); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "FCM token updated", nil)
}

// UpdateAvailability toggles whether the volunteer appears in the available
// pool.
func (uc *UserController) UpdateAvailability(c *gin.Context) {
	var req models.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if req.IsAvailable == nil {
		utils.BadRequestResponse(c, "isAvailable is required")
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	user, err := uc.userService.UpdateAvailability(c.Request.Context(), userID, *req.IsAvailable)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability updated", user)
}
