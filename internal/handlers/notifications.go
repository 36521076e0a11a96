package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/middleware"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

// NotificationHandler exposes the caller's notification inbox.
type NotificationHandler struct {
	Notifications *service.NotificationService
	Log           *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications, Log: log}
}

// List returns the caller's notifications; ?unread=true keeps only unread ones.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.Principal(c).UserID
	unreadOnly := c.Query("unread") == "true"

	items, err := h.Notifications.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	unread, err := h.Notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Notifications fetched successfully", gin.H{
		"notifications": items,
		"unreadCount":   unread,
	})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Request.Context(), middleware.Principal(c).UserID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Notification marked as read", n)
}

// MarkAllRead flags every unread notification of the caller.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	changed, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.Principal(c).UserID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Notifications marked as read", gin.H{"updated": changed})
}
