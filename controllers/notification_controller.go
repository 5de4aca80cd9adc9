// controllers/notification_controller.go
package controllers

import (
	"resqlink/middleware"
	"resqlink/services"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List returns the caller's notification inbox with the unread count.
func (nc *NotificationController) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	notifications, unread, err := nc.notificationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notifications retrieved", gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// UnreadCount returns only the caller's unread total, for badge polling.
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	count, err := nc.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Unread count retrieved", gin.H{"unreadCount": count})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	if err := nc.notificationService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", nil)
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	count, err := nc.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notifications marked as read", gin.H{"updated": count})
}

func (nc *NotificationController) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	if err := nc.notificationService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification deleted", nil)
}
