package service

import (
	"github.com/sweet-sh/sweet-api/internal/model"
)

// findComment 在评论树中定位指定评论，返回节点、父节点（顶层评论为 nil）
// 和层级（顶层为 1）。未找到返回 nil 节点
func findComment(comments []*model.Comment, commentID string) (*model.Comment, *model.Comment, int) {
	return findCommentAt(comments, nil, commentID, 1)
}

func findCommentAt(comments []*model.Comment, parent *model.Comment, commentID string, depth int) (*model.Comment, *model.Comment, int) {
	for _, c := range comments {
		if c.ID == commentID {
			return c, parent, depth
		}
		if node, p, d := findCommentAt(c.Replies, c, commentID, depth+1); node != nil {
			return node, p, d
		}
	}
	return nil, nil, 0
}

// countComments 统计可见评论数，软删除的占位评论不计入
func countComments(comments []*model.Comment) int {
	n := 0
	for _, c := range comments {
		if !c.Deleted {
			n++
		}
		n += countComments(c.Replies)
	}
	return n
}

// removeComment 从树中摘除指定节点，返回是否摘除成功
func removeComment(comments *[]*model.Comment, target *model.Comment) bool {
	for i, c := range *comments {
		if c == target {
			*comments = append((*comments)[:i], (*comments)[i+1:]...)
			return true
		}
		if removeComment(&c.Replies, target) {
			return true
		}
	}
	return false
}

// pruneDeletedAncestors 向上清理：当一条评论被彻底移除后，它的祖先若是
// 已软删除且不再有任何回复的占位节点，也一并移除，直到遇到仍有内容的节点
func pruneDeletedAncestors(post *model.Post, commentID string) {
	for {
		node, parent, _ := findComment(post.Comments, commentID)
		if node == nil {
			return
		}
		if parent == nil {
			removeComment(&post.Comments, node)
			return
		}
		removeComment(&parent.Replies, node)
		if !parent.Deleted || len(parent.Replies) > 0 {
			return
		}
		commentID = parent.ID
	}
}

// collectCommentImages 收集子树里所有评论引用的图片文件名，用于删除时清理存储
func collectCommentImages(c *model.Comment) []string {
	images := append([]string(nil), c.Images...)
	for _, r := range c.Replies {
		images = append(images, collectCommentImages(r)...)
	}
	return images
}

// collectCommentAuthors 收集子树里所有未删除评论的作者
func collectCommentAuthors(comments []*model.Comment, into map[int]struct{}) {
	for _, c := range comments {
		if !c.Deleted {
			into[c.AuthorID] = struct{}{}
		}
		collectCommentAuthors(c.Replies, into)
	}
}

// annotateComments 为展示标注评论树：层级、能否回复（到达最大层级的评论
// 不能再回复）、能否删除（评论作者或帖子作者）、静音和标记状态。
// 被查看者静音的作者的评论保留占位但不展示内容
func annotateComments(comments []*model.Comment, depth int, post *model.Post, vc *viewerContext) {
	for _, c := range comments {
		c.Level = depth
		c.Muted = vc.mutedIDs[c.AuthorID]
		c.AuthorFlagged = vc.flaggedIDs[c.AuthorID]
		c.CanDisplay = !c.Deleted && !c.Muted
		c.CanReply = depth < model.MaxCommentDepth && !c.Deleted
		c.CanDelete = !c.Deleted && (c.AuthorID == vc.viewer.ID || post.AuthorID == vc.viewer.ID)
		annotateComments(c.Replies, depth+1, post, vc)
	}
}
