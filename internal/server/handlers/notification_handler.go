package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/notifications"
)

// NotificationHandler exposes the notification inbox endpoints.
type NotificationHandler struct {
	svc    *notifications.Service
	logger *zap.Logger
}

// NewNotificationHandler constructs the notification HTTP adapter.
func NewNotificationHandler(svc *notifications.Service, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{svc: svc, logger: logger}
}

// List returns a page of the caller's notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)

	items, total, err := h.svc.List(c.Request.Context(), middleware.ActorFrom(c), page, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"pagination":    newPagination(total, page, limit),
	})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}
