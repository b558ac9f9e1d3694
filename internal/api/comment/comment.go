package comment

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/service"
)

// CommentHandler 处理评论相关的HTTP请求
type CommentHandler struct {
	commentService *service.CommentService
	userService    *service.UserService
}

func NewCommentHandler(commentService *service.CommentService, userService *service.UserService) *CommentHandler {
	return &CommentHandler{commentService, userService}
}

func (h *CommentHandler) currentUser(c *gin.Context) (*model.User, bool) {
	user, err := h.userService.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return nil, false
	}
	return user, true
}

// Create 创建评论。路由 /api/comment/:postid/:commentid?，
// 带 commentid 时是对已有评论的回复
func (h *CommentHandler) Create(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("postid"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}

	var body struct {
		Content  string   `json:"content" binding:"required"`
		Mentions []string `json:"mentions"`
		Images   []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	comment, err := h.commentService.CreateComment(user, &service.CreateCommentInput{
		PostID:   postID,
		ParentID: c.Param("commentid"),
		Content:  body.Content,
		Mentions: body.Mentions,
		Images:   body.Images,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, comment, "评论发布成功")
}

// Delete 删除评论
func (h *CommentHandler) Delete(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("postid"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子ID", err))
		return
	}
	commentID := c.Param("commentid")
	if commentID == "" {
		errors.HandleError(c, errors.New(errors.ErrValidation, "缺少评论ID"))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	post, err := h.commentService.DeleteComment(user, postID, commentID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"numberOfComments": post.NumberOfComments,
	}, "评论已删除")
}
