package notification

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/service"
)

// NotificationHandler 处理站内通知相关的HTTP请求
type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService}
}

// List 返回当前用户的通知列表，倒序分页
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetInt("user_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, err := h.notificationService.ListNotifications(userID, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取通知失败", err))
		return
	}
	errors.HandleSuccess(c, notifications, "")
}

// MarkSeen 将当前用户的全部通知标记为已读
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	userID := c.GetInt("user_id")
	if err := h.notificationService.MarkAllSeen(userID); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "标记通知失败", err))
		return
	}
	errors.HandleSuccess(c, nil, "通知已全部标记为已读")
}
