package handler

import (
	"context"
	"net/http"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/middleware"
	"eventhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes expects rg to be guarded by the auth middleware.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.PATCH("/read-all", h.MarkAllAsRead)
	rg.PATCH("/:id/read", h.MarkAsRead)
}

func (h *NotificationHandler) List(c *gin.Context) {
	var query dto.ListNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.notificationService.List(ctx, middleware.CurrentUser(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{
		"notifications": list.Notifications,
		"unreadCount":   list.UnreadCount,
		"pagination":    list.Pagination,
	})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := pathID(c, "id", "notification")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.notificationService.MarkAsRead(ctx, middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.notificationService.MarkAllAsRead(ctx, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": updated})
}
