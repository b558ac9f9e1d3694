package user

import (
	"github.com/gin-gonic/gin"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/service"
)

// RelationshipHandler 处理用户关系相关的HTTP请求
type RelationshipHandler struct {
	userService *service.UserService
}

func NewRelationshipHandler(userService *service.UserService) *RelationshipHandler {
	return &RelationshipHandler{userService}
}

type relationshipRequest struct {
	To    string `json:"to" binding:"required"`
	Value string `json:"value" binding:"required,relationship_type"`
}

// Create 建立一条关系边（follow/trust/mute/flag）
func (h *RelationshipHandler) Create(c *gin.Context) {
	var req relationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	viewer, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	if err := h.userService.SetRelationship(viewer, req.To, req.Value); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "关系已建立")
}

// Remove 移除一条关系边
func (h *RelationshipHandler) Remove(c *gin.Context) {
	var req relationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	viewer, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	if err := h.userService.RemoveRelationship(viewer, req.To, req.Value); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "关系已移除")
}
