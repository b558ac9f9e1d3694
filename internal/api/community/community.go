package community

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/service"
	"github.com/sweet-sh/sweet-api/internal/storage"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// CommunityHandler 处理社区相关的HTTP请求
type CommunityHandler struct {
	communityService *service.CommunityService
	userService      *service.UserService
	storage          storage.FileStorage
}

func NewCommunityHandler(
	communityService *service.CommunityService,
	userService *service.UserService,
	storage storage.FileStorage,
) *CommunityHandler {
	return &CommunityHandler{communityService, userService, storage}
}

func (h *CommunityHandler) currentUser(c *gin.Context) (*model.User, bool) {
	user, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return nil, false
	}
	return user, true
}

// Create 创建社区
func (h *CommunityHandler) Create(c *gin.Context) {
	var createData struct {
		Name        string `json:"name" binding:"required"`
		Slug        string `json:"slug" binding:"required"`
		Description string `json:"description"`
		Visibility  string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&createData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	community := &model.Community{
		Name:        createData.Name,
		Slug:        createData.Slug,
		Description: createData.Description,
		Visibility:  createData.Visibility,
	}
	if err := h.communityService.CreateCommunity(user, community); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, community, "社区创建成功")
}

// List 返回全部社区
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.communityService.ListCommunities()
	if err != nil {
		util.Logger.Error("获取社区列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取社区列表失败", err))
		return
	}
	errors.HandleSuccess(c, communities, "")
}

// Get 返回社区详情，标识符可以是ID或slug
func (h *CommunityHandler) Get(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	view, err := h.communityService.GetCommunityView(user, c.Param("identifier"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, view, "")
}

// Join 加入社区
func (h *CommunityHandler) Join(c *gin.Context) {
	h.membershipAction(c, h.communityService.Join, "已加入社区")
}

// Leave 退出社区
func (h *CommunityHandler) Leave(c *gin.Context) {
	h.membershipAction(c, h.communityService.Leave, "已退出社区")
}

func (h *CommunityHandler) membershipAction(
	c *gin.Context,
	action func(*model.User, int) error,
	message string,
) {
	var req struct {
		CommunityID int `json:"communityId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := action(user, req.CommunityID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, message)
}

type moderationRequest struct {
	CommunityID int `json:"communityId" binding:"required"`
	UserID      int `json:"userId" binding:"required"`
}

// Mute 禁言社区成员
func (h *CommunityHandler) Mute(c *gin.Context) {
	h.moderationAction(c, h.communityService.MuteMember, "成员已被禁言")
}

// Unmute 解除禁言
func (h *CommunityHandler) Unmute(c *gin.Context) {
	h.moderationAction(c, h.communityService.UnmuteMember, "已解除禁言")
}

// Ban 封禁用户
func (h *CommunityHandler) Ban(c *gin.Context) {
	h.moderationAction(c, h.communityService.BanMember, "用户已被封禁")
}

// Unban 解除封禁
func (h *CommunityHandler) Unban(c *gin.Context) {
	h.moderationAction(c, h.communityService.UnbanMember, "已解除封禁")
}

func (h *CommunityHandler) moderationAction(
	c *gin.Context,
	action func(*model.User, int, int) error,
	message string,
) {
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := action(user, req.CommunityID, req.UserID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, message)
}

// UploadImage 上传社区头图
func (h *CommunityHandler) UploadImage(c *gin.Context) {
	communityID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的社区ID", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !user.InCommunity(communityID) {
		errors.HandleError(c, errors.New(errors.ErrNotCommunityMember, "必须是社区成员"))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("communities/%d/%s", communityID, filename)

	imageURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传社区图片失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传图片失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"image_url": imageURL}, "图片上传成功")
}
