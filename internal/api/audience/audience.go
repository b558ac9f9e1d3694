package audience

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/service"
)

// AudienceHandler 处理受众列表相关的HTTP请求
type AudienceHandler struct {
	audienceService *service.AudienceService
	userService     *service.UserService
}

func NewAudienceHandler(audienceService *service.AudienceService, userService *service.UserService) *AudienceHandler {
	return &AudienceHandler{audienceService, userService}
}

func (h *AudienceHandler) currentUser(c *gin.Context) (*model.User, bool) {
	user, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return nil, false
	}
	return user, true
}

type audienceRequest struct {
	Name         string                     `json:"name" binding:"required"`
	Users        []int                      `json:"users"`
	Capabilities model.AudienceCapabilities `json:"capabilities"`
}

// Create 创建受众列表
func (h *AudienceHandler) Create(c *gin.Context) {
	var body audienceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	audience := &model.Audience{
		Name:         body.Name,
		Users:        body.Users,
		Capabilities: body.Capabilities,
	}
	if err := h.audienceService.CreateAudience(user, audience); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, audience, "受众列表创建成功")
}

// Update 更新受众列表
func (h *AudienceHandler) Update(c *gin.Context) {
	audienceID, ok := h.audienceID(c)
	if !ok {
		return
	}

	var body audienceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	audience := &model.Audience{
		ID:           audienceID,
		Name:         body.Name,
		Users:        body.Users,
		Capabilities: body.Capabilities,
	}
	if err := h.audienceService.UpdateAudience(user, audience); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, audience, "受众列表更新成功")
}

// Delete 删除受众列表
func (h *AudienceHandler) Delete(c *gin.Context) {
	audienceID, ok := h.audienceID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.audienceService.DeleteAudience(user, audienceID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "受众列表已删除")
}

// List 返回当前用户的全部受众列表
func (h *AudienceHandler) List(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	audiences, err := h.audienceService.ListAudiences(user)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取受众列表失败", err))
		return
	}
	errors.HandleSuccess(c, audiences, "")
}

// Get 返回单个受众列表及成员详情
func (h *AudienceHandler) Get(c *gin.Context) {
	audienceID, ok := h.audienceID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	audience, members, err := h.audienceService.GetAudience(user, audienceID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{
		"audience": audience,
		"members":  members,
	}, "")
}

func (h *AudienceHandler) audienceID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的受众ID", err))
		return 0, false
	}
	return id, true
}
