// controllers/auth_controller.go
package controllers

import (
	"resqlink/middleware"
	"resqlink/models"
	"resqlink/services"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
	validator   *utils.ValidationService
}

func NewAuthController(authService *services.AuthService, validator *utils.ValidationService) *AuthController {
	return &AuthController{
		authService: authService,
		validator:   validator,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.APIResponse{data=models.AuthResponse}
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	response, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Account created successfully", response)
}

// Login handles user authentication
// @Summary Login with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.AuthResponse}
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	response, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

// GoogleAuth handles Google sign-in
// @Summary Authenticate with a Google ID token
// @Tags Authentication
// @Router /auth/google [post]
func (ac *AuthController) GoogleAuth(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	response, err := ac.authService.GoogleAuth(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh access token
// @Tags Authentication
// @Router /auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	pair, err := ac.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed", pair)
}

// GetProfile returns the authenticated user's profile
// @Summary Get current user
// @Tags Authentication
// @Security BearerAuth
// @Router /auth/me [get]
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := ac.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", user)
}
