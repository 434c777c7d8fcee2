package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	notificationdomain "github.com/faithadeola/TrustRail/internal/domain/notification"
	"github.com/faithadeola/TrustRail/internal/http/middleware"
)

type NotificationService interface {
	List(ctx context.Context, businessID string, unreadOnly bool, limit, offset int32) ([]notificationdomain.Entity, error)
	MarkRead(ctx context.Context, businessID string, id int64) error
	MarkAllRead(ctx context.Context, businessID string) error
	CountUnread(ctx context.Context, businessID string) (int64, error)
}

type NotificationHandler struct {
	notificationService NotificationService
}

func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	unreadOnly := strings.EqualFold(strings.TrimSpace(c.Query("unread")), "true")

	items, err := h.notificationService.List(c.Request.Context(), middleware.BusinessID(c), unreadOnly, int32(limit), int32(offset))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_notifications_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("notificationId")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_notification_id"})
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), middleware.BusinessID(c), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.BusinessID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mark_all_read_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *NotificationHandler) CountUnread(c *gin.Context) {
	count, err := h.notificationService.CountUnread(c.Request.Context(), middleware.BusinessID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count_unread_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
