package post

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/service"
)

// PostHandler 处理帖子相关的HTTP请求
type PostHandler struct {
	postService *service.PostService
	userService *service.UserService
}

func NewPostHandler(postService *service.PostService, userService *service.UserService) *PostHandler {
	return &PostHandler{postService, userService}
}

func (h *PostHandler) currentUser(c *gin.Context) (*model.User, bool) {
	user, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return nil, false
	}
	return user, true
}

func (h *PostHandler) postID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("postid"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return 0, false
	}
	return id, true
}

// Create 发布帖子
func (h *PostHandler) Create(c *gin.Context) {
	var body struct {
		Content        string   `json:"content" binding:"required"`
		ContentWarning string   `json:"contentWarning"`
		IsPrivate      bool     `json:"isPrivate"`
		IsDraft        bool     `json:"isDraft"`
		CommunityID    *int     `json:"communityId"`
		Audiences      []int    `json:"audiences"`
		Mentions       []string `json:"mentions"`
		Tags           []string `json:"tags"`
		Images         []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	post, err := h.postService.CreatePost(user, &service.CreatePostInput{
		Content:        body.Content,
		ContentWarning: body.ContentWarning,
		IsPrivate:      body.IsPrivate,
		IsDraft:        body.IsDraft,
		CommunityID:    body.CommunityID,
		Audiences:      body.Audiences,
		Mentions:       body.Mentions,
		Tags:           body.Tags,
		Images:         body.Images,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, post, "帖子发布成功")
}

// Edit 编辑帖子
func (h *PostHandler) Edit(c *gin.Context) {
	postID, ok := h.postID(c)
	if !ok {
		return
	}

	var body struct {
		Content        string   `json:"content" binding:"required"`
		ContentWarning string   `json:"contentWarning"`
		Mentions       []string `json:"mentions"`
		Tags           []string `json:"tags"`
		Audiences      []int    `json:"audiences"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	post, err := h.postService.EditPost(user, postID, &service.EditPostInput{
		Content:        body.Content,
		ContentWarning: body.ContentWarning,
		Mentions:       body.Mentions,
		Tags:           body.Tags,
		Audiences:      body.Audiences,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, post, "帖子编辑成功")
}

// Delete 删除帖子
func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := h.postID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(user, postID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "帖子已删除")
}

// Plus 赞同开关
func (h *PostHandler) Plus(c *gin.Context) {
	postID, ok := h.postID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.postService.TogglePlus(user, postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, result, "")
}

// Boost 转发帖子，可选地转发到某个社区
func (h *PostHandler) Boost(c *gin.Context) {
	postID, ok := h.postID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var communityID *int
	if locationParam := c.Param("locationid"); locationParam != "" && locationParam != "/" {
		id, err := strconv.Atoi(locationParam)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的社区ID", err))
			return
		}
		communityID = &id
	}

	boost, err := h.postService.Boost(user, postID, communityID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, boost, "转发成功")
}

// RemoveBoost 取消转发
func (h *PostHandler) RemoveBoost(c *gin.Context) {
	postID, ok := h.postID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.postService.RemoveBoost(user, postID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "已取消转发")
}

// Subscribe 订阅帖子
func (h *PostHandler) Subscribe(c *gin.Context) {
	h.subscriptionAction(c, h.postService.Subscribe, "已订阅")
}

// Unsubscribe 退订帖子
func (h *PostHandler) Unsubscribe(c *gin.Context) {
	h.subscriptionAction(c, h.postService.Unsubscribe, "已退订")
}

func (h *PostHandler) subscriptionAction(
	c *gin.Context,
	action func(*model.User, int) error,
	message string,
) {
	postID, ok := h.postID(c)
	if !ok {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := action(user, postID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, message)
}

// AddToLibrary 收藏帖子
func (h *PostHandler) AddToLibrary(c *gin.Context) {
	h.subscriptionAction(c, h.postService.AddToLibrary, "已加入收藏夹")
}

// RemoveFromLibrary 取消收藏
func (h *PostHandler) RemoveFromLibrary(c *gin.Context) {
	h.subscriptionAction(c, h.postService.RemoveFromLibrary, "已移出收藏夹")
}
