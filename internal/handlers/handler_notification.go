package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/gin-gonic/gin"
)

// notificationHandler serves the caller's in-app inbox.
type notificationHandler struct {
	inbox portssvc.NotificationInboxSvc
}

func newNotificationHandler(inbox portssvc.NotificationInboxSvc) *notificationHandler {
	return &notificationHandler{inbox: inbox}
}

// registerNotificationRoutes registers inbox routes for every role.
func registerNotificationRoutes(rg *gin.RouterGroup, inbox portssvc.NotificationInboxSvc) {
	h := newNotificationHandler(inbox)

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.list)
		notifications.GET("/count", h.count)
		notifications.PUT("/read-all", h.markAllRead)
		notifications.PUT("/:id/read", h.markRead)
		notifications.DELETE("/:id", h.delete)
	}
}

// list godoc
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param unreadOnly query bool false "Only unread"
// @Success 200 {object} dto.ListNotificationsResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *notificationHandler) list(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var params dto.ListNotificationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	notifications, err := h.inbox.ListNotifications(c.Request.Context(), userID, params.UnreadOnly)
	if err != nil {
		respondServiceError(c, err, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Notifications: notifications})
}

// count godoc
// @Summary Notification counters
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.NotificationCountsResponse
// @Security BearerAuth
// @Router /notifications/count [get]
func (h *notificationHandler) count(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	total, unread, err := h.inbox.CountNotifications(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, dto.NotificationCountsResponse{Total: total, Unread: unread})
}

// markRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} domain.Notification
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [put]
func (h *notificationHandler) markRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	n, err := h.inbox.MarkAsRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to mark notification as read")
		return
	}
	c.JSON(http.StatusOK, n)
}

// markAllRead godoc
// @Summary Mark every notification as read
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /notifications/read-all [put]
func (h *notificationHandler) markAllRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	updated, err := h.inbox.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to mark notifications as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// delete godoc
// @Summary Delete a notification
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id} [delete]
func (h *notificationHandler) delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.inbox.DeleteNotification(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}
