package feed

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/service"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// FeedHandler 处理信息流相关的HTTP请求
type FeedHandler struct {
	feedService *service.FeedService
	userService *service.UserService
}

func NewFeedHandler(feedService *service.FeedService, userService *service.UserService) *FeedHandler {
	return &FeedHandler{feedService, userService}
}

// List 返回一页信息流。
// 路由形如 /api/posts/:context，identifier 和 before 从查询参数取：
// identifier 的含义随上下文变化（用户名/ID、社区slug/ID、标签、帖子ID、永久链接），
// before 是毫秒时间戳游标，缺省为当前时间
func (h *FeedHandler) List(c *gin.Context) {
	viewer, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	req := &service.FeedRequest{
		Context:    c.Param("context"),
		Identifier: c.Query("identifier"),
	}

	if beforeParam := c.Query("before"); beforeParam != "" {
		millis, err := strconv.ParseInt(beforeParam, 10, 64)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的时间游标", err))
			return
		}
		before := time.UnixMilli(millis)
		req.Before = &before
	}

	page, err := h.feedService.ListFeed(viewer, req)
	if err != nil {
		util.Logger.Error("装配信息流失败",
			zap.String("context", req.Context),
			zap.String("identifier", req.Identifier),
			zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, page, "")
}
