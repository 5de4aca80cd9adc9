package utils

import (
	"net/http"
	"time"

	"resqlink/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Success responses

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *models.MetaData) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Error responses

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidation, message, nil)
}

func ValidationErrorResponse(c *gin.Context, validationErrors []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidation, "Validation failed", validationErrors)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	ErrorResponse(c, http.StatusUnauthorized, models.ErrCodeAuthentication, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access forbidden"
	}
	ErrorResponse(c, http.StatusForbidden, models.ErrCodeAuthorization, message, nil)
}

func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, resource+" not found", nil)
}

func RateLimitResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusTooManyRequests, models.ErrCodeRateLimit, "Rate limit exceeded", nil)
}

func InternalServerErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternal, message, nil)
}

// HandleServiceError renders a ServiceError with its own status code, and
// everything else as a generic 500. Unexpected failures get logged with the
// cause; the client only sees a generic message.
func HandleServiceError(c *gin.Context, err error) {
	if serviceErr, ok := GetServiceError(err); ok && serviceErr.StatusCode < http.StatusInternalServerError {
		ErrorResponse(c, serviceErr.StatusCode, serviceErr.Code, serviceErr.Message, nil)
		return
	}

	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err,
	}).Error("Unhandled service error")
	InternalServerErrorResponse(c, "")
}

func CreatePaginationMeta(page, pageSize int, total int64) *models.MetaData {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.MetaData{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
