package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/util"
	"go.uber.org/zap"
)

// postRepository 实现了 PostRepository 接口。
// 帖子作为完整文档存储：评论树、转发记录、赞同和订阅集合都是JSON列，
// Save 整体写回，对同一帖子的并发修改由最后写入胜出
type postRepository struct {
	db *sql.DB
}

// NewPostRepository 创建一个新的 postRepository 实例
func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db}
}

const postColumns = `id, type, author_id, community_id, url, privacy, audiences,
	timestamp, last_updated, last_edited, content, content_warning, mentions, tags,
	boosts, boost_target_id, pluses, number_of_comments, subscribed_users, unsubscribed_users, comments`

// Create 创建帖子
func (r *postRepository) Create(post *model.Post) error {
	audiences, err := marshalJSON(post.Audiences)
	if err != nil {
		return err
	}
	mentions, _ := marshalJSON(post.Mentions)
	tags, _ := marshalJSON(post.Tags)
	boosts, _ := marshalJSON(post.Boosts)
	pluses, _ := marshalJSON(post.Pluses)
	subscribed, _ := marshalJSON(post.SubscribedUsers)
	unsubscribed, _ := marshalJSON(post.UnsubscribedUser)
	comments, _ := marshalJSON(post.Comments)

	result, err := r.db.Exec(`
		INSERT INTO posts (type, author_id, community_id, url, privacy, audiences, timestamp, last_updated,
		                   last_edited, content, content_warning, mentions, tags, boosts, boost_target_id,
		                   pluses, number_of_comments, subscribed_users, unsubscribed_users, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Type, post.AuthorID, post.CommunityID, post.URL, post.Privacy, audiences,
		post.Timestamp, post.LastUpdated, post.LastEdited, post.Content, post.ContentWarning,
		mentions, tags, boosts, post.BoostTargetID, pluses, post.NumberOfComments,
		subscribed, unsubscribed, comments)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err), zap.Int("author_id", post.AuthorID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = int(id)
	return nil
}

func scanPost(scanner interface{ Scan(...interface{}) error }) (*model.Post, error) {
	var post model.Post
	var audiences, mentions, tags, boosts, pluses, subscribed, unsubscribed, comments []byte
	err := scanner.Scan(
		&post.ID, &post.Type, &post.AuthorID, &post.CommunityID, &post.URL, &post.Privacy,
		&audiences, &post.Timestamp, &post.LastUpdated, &post.LastEdited, &post.Content,
		&post.ContentWarning, &mentions, &tags, &boosts, &post.BoostTargetID, &pluses,
		&post.NumberOfComments, &subscribed, &unsubscribed, &comments,
	)
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		data []byte
		dest interface{}
	}{
		{audiences, &post.Audiences},
		{mentions, &post.Mentions},
		{tags, &post.Tags},
		{boosts, &post.Boosts},
		{pluses, &post.Pluses},
		{subscribed, &post.SubscribedUsers},
		{unsubscribed, &post.UnsubscribedUser},
		{comments, &post.Comments},
	} {
		if err := unmarshalJSON(pair.data, pair.dest); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

// FindByID 通过ID查找帖子
func (r *postRepository) FindByID(id int) (*model.Post, error) {
	return scanPost(r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// FindByURL 通过永久链接查找帖子
func (r *postRepository) FindByURL(url string) (*model.Post, error) {
	return scanPost(r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE url = ?`, url))
}

// FindByIDs 批量查找帖子，用于解析转发目标
func (r *postRepository) FindByIDs(ids []int) ([]*model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(`SELECT `+postColumns+` FROM posts WHERE id IN (`+placeholders(len(ids))+`)`,
		intArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostRows(rows)
}

func scanPostRows(rows *sql.Rows) ([]*model.Post, error) {
	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// FindCandidates 按候选集谓词取一页候选帖子。
// 谓词的各字段由候选查询构建器按浏览上下文填充，这里只负责翻译成SQL
func (r *postRepository) FindCandidates(q *model.CandidateQuery) ([]*model.Post, error) {
	if q.Empty {
		return nil, nil
	}

	where := []string{`type != 'draft'`}
	var args []interface{}

	switch {
	case q.PostID != nil:
		where = append(where, `id = ?`)
		args = append(args, *q.PostID)
	case q.URL != "":
		where = append(where, `url = ?`)
		args = append(args, q.URL)
	case q.Author != nil:
		where = append(where, `author_id = ?`)
		args = append(args, *q.Author)
		if len(q.VisibleCommunities) > 0 {
			where = append(where, `(community_id IS NULL OR community_id IN (`+placeholders(len(q.VisibleCommunities))+`))`)
			args = append(args, intArgs(q.VisibleCommunities)...)
		} else {
			where = append(where, `community_id IS NULL`)
		}
	case q.Community != nil:
		where = append(where, `community_id = ?`)
		args = append(args, *q.Community)
	case q.Tag != "":
		where = append(where, `JSON_CONTAINS(tags, JSON_QUOTE(?))`)
		args = append(args, q.Tag)
	case q.PostIDs != nil:
		if len(q.PostIDs) == 0 {
			return nil, nil
		}
		where = append(where, `id IN (`+placeholders(len(q.PostIDs))+`)`)
		args = append(args, intArgs(q.PostIDs)...)
	default:
		// home：关注的作者，或所属社区的社区帖
		var or []string
		if len(q.FollowedAuthors) > 0 {
			or = append(or, `author_id IN (`+placeholders(len(q.FollowedAuthors))+`)`)
			args = append(args, intArgs(q.FollowedAuthors)...)
		}
		if len(q.MemberCommunities) > 0 {
			or = append(or, `(type = 'community' AND community_id IN (`+placeholders(len(q.MemberCommunities))+`))`)
			args = append(args, intArgs(q.MemberCommunities)...)
		}
		if len(or) == 0 {
			return nil, nil
		}
		where = append(where, `(`+strings.Join(or, ` OR `)+`)`)
	}

	// 受众门槛：无受众列表的帖子走旧的可见性模型，作者本人恒可见
	if q.ViewerID != 0 && q.Community == nil {
		clause := `(audiences IS NULL OR author_id = ?`
		args = append(args, q.ViewerID)
		if len(q.ViewerAudiences) > 0 {
			data, err := marshalJSON(q.ViewerAudiences)
			if err != nil {
				return nil, err
			}
			clause += ` OR JSON_OVERLAPS(audiences, CAST(? AS JSON))`
			args = append(args, data)
		}
		where = append(where, clause+`)`)
	}

	sortColumn := "last_updated"
	if q.SortBy == model.SortByTimestamp {
		sortColumn = "timestamp"
	}
	if !q.Before.IsZero() {
		where = append(where, sortColumn+` < ?`)
		args = append(args, q.Before)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = model.PostsPerPage
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY %s DESC LIMIT %d`,
		postColumns, strings.Join(where, ` AND `), sortColumn, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询候选帖子失败", zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return scanPostRows(rows)
}

// Save 整体写回帖子文档
func (r *postRepository) Save(post *model.Post) error {
	audiences, err := marshalJSON(post.Audiences)
	if err != nil {
		return err
	}
	mentions, _ := marshalJSON(post.Mentions)
	tags, _ := marshalJSON(post.Tags)
	boosts, _ := marshalJSON(post.Boosts)
	pluses, _ := marshalJSON(post.Pluses)
	subscribed, _ := marshalJSON(post.SubscribedUsers)
	unsubscribed, _ := marshalJSON(post.UnsubscribedUser)
	comments, err := marshalJSON(post.Comments)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		UPDATE posts
		SET privacy = ?, audiences = ?, last_updated = ?, last_edited = ?, content = ?,
		    content_warning = ?, mentions = ?, tags = ?, boosts = ?, pluses = ?,
		    number_of_comments = ?, subscribed_users = ?, unsubscribed_users = ?, comments = ?
		WHERE id = ?`,
		post.Privacy, audiences, post.LastUpdated, post.LastEdited, post.Content,
		post.ContentWarning, mentions, tags, boosts, pluses, post.NumberOfComments,
		subscribed, unsubscribed, comments, post.ID)
	if err != nil {
		util.Logger.Error("保存帖子失败", zap.Error(err), zap.Int("post_id", post.ID))
	}
	return err
}

// Delete 删除帖子
func (r *postRepository) Delete(id int) error {
	_, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

// DetachBoostsOf 删除所有指向目标帖的 boost 行。
// 目标被删除后这些转发无从解析，信息流也永远不会展示它们
func (r *postRepository) DetachBoostsOf(targetID int) error {
	_, err := r.db.Exec(`DELETE FROM posts WHERE type = 'boost' AND boost_target_id = ?`, targetID)
	if err != nil {
		util.Logger.Error("清理转发帖失败", zap.Error(err), zap.Int("target_id", targetID))
	}
	return err
}
