package user

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/config"
	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/service"
	"github.com/sweet-sh/sweet-api/internal/storage"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// ProfileHandler 处理用户资料相关的HTTP请求
type ProfileHandler struct {
	userService *service.UserService
	storage     storage.FileStorage
}

func NewProfileHandler(userService *service.UserService, storage storage.FileStorage) *ProfileHandler {
	return &ProfileHandler{userService, storage}
}

// GetProfile 返回当前登录用户自己的资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// GetUserProfile 返回任意用户的主页聚合视图，标识符可以是ID或用户名
func (h *ProfileHandler) GetUserProfile(c *gin.Context) {
	viewer, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	view, err := h.userService.GetProfile(viewer, c.Param("identifier"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, view, "")
}

// ListRelatedUsers 返回当前用户关注或信任的用户列表
func (h *ProfileHandler) ListRelatedUsers(c *gin.Context) {
	viewer, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	users, err := h.userService.ListRelatedUsers(viewer)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户列表失败", err))
		return
	}

	errors.HandleSuccess(c, users, "")
}

// UpdateProfile 更新当前用户的展示性资料
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	currentUser, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户信息失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	var updateData struct {
		DisplayName  string `json:"display_name"`
		Bio          string `json:"bio"`
		ImageEnabled *bool  `json:"image_enabled"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if updateData.DisplayName != "" {
		currentUser.DisplayName = updateData.DisplayName
	}
	if updateData.Bio != "" {
		currentUser.Bio = updateData.Bio
	}
	if updateData.ImageEnabled != nil {
		currentUser.ImageEnabled = *updateData.ImageEnabled
	}

	if err := h.userService.UpdateProfile(currentUser); err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": currentUser,
	}, "资料更新成功")
}

// UpdateSettings 更新时间线排序等个人设置
func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	var settings model.UserSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.userService.UpdateSettings(userID, settings); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "设置更新成功")
}

// UploadAvatar 上传头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Logger.Error("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%d/%s", userID, filename)

	avatarURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传头像失败", err))
		return
	}

	currentUser, err := h.userService.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	currentUser.Image = avatarURL
	currentUser.ImageEnabled = true
	if err := h.userService.UpdateProfile(currentUser); err != nil {
		util.Logger.Error("更新用户头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户头像失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"avatar_url": fmt.Sprintf("%s%s", config.AppConfig.ImageDisplayPrefix, avatarURL),
	}, "头像上传成功")
}
