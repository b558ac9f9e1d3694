package service

import (
	"strconv"
	"time"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// FeedService 信息流装配服务：候选拉取、转发去重、可见性裁剪、
// 标注这一整条读取流水线
type FeedService struct {
	postRepo         interfaces.PostRepository
	userRepo         interfaces.UserRepository
	communityRepo    interfaces.CommunityRepository
	relationshipRepo interfaces.RelationshipRepository
	audienceRepo     interfaces.AudienceRepository
	libraryRepo      interfaces.LibraryRepository
}

func NewFeedService(
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	communityRepo interfaces.CommunityRepository,
	relationshipRepo interfaces.RelationshipRepository,
	audienceRepo interfaces.AudienceRepository,
	libraryRepo interfaces.LibraryRepository,
) *FeedService {
	return &FeedService{
		postRepo:         postRepo,
		userRepo:         userRepo,
		communityRepo:    communityRepo,
		relationshipRepo: relationshipRepo,
		audienceRepo:     audienceRepo,
		libraryRepo:      libraryRepo,
	}
}

// FeedRequest 一次信息流请求。Identifier 的含义随上下文变化：
// 用户/社区页是ID或名字，标签页是标签名，单帖页是帖子ID，链接页是永久链接
type FeedRequest struct {
	Context    string
	Identifier string
	Before     *time.Time
}

// FeedPage 一页装配完成的信息流。Oldest 是本页最旧一条候选的排序键，
// 作为下一页请求的游标
type FeedPage struct {
	Posts  []*model.AnnotatedPost `json:"posts"`
	Oldest *time.Time             `json:"oldest,omitempty"`
}

// ListFeed 装配一页信息流。候选分批拉取，经过转发去重和可见性裁剪后
// 可能不足一页，此时继续向更早的候选推进，直到凑满一页或候选耗尽
func (s *FeedService) ListFeed(viewer *model.User, req *FeedRequest) (*FeedPage, error) {
	vc, err := loadViewerContext(viewer, s.relationshipRepo, s.audienceRepo)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(vc, req)
	if err != nil {
		return nil, err
	}

	libraryIDs, err := s.libraryRepo.FindPostIDs(viewer.ID)
	if err != nil {
		return nil, err
	}
	inLibrary := idSet(libraryIDs)

	var before time.Time
	if req.Before != nil {
		before = *req.Before
	}

	page := &FeedPage{Posts: []*model.AnnotatedPost{}}
	seen := map[int]bool{}

	for len(page.Posts) < model.PostsPerPage {
		query := buildCandidateQuery(vc, req.Context, target, before)
		if query.Empty {
			break
		}
		candidates, err := s.postRepo.FindCandidates(&query)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}

		targets, err := s.loadBoostTargets(candidates)
		if err != nil {
			return nil, err
		}
		if err := s.hydratePosts(append(candidates, boostTargetList(targets)...)); err != nil {
			return nil, err
		}

		for _, candidate := range candidates {
			oldest := sortKey(candidate, query.SortBy)
			page.Oldest = &oldest
			before = oldest

			display, blame, suppressed := s.resolveDisplay(candidate, targets, vc, req.Context, target)
			if suppressed || display == nil || seen[display.ID] {
				continue
			}
			if !postVisible(vc, display, req.Context) {
				continue
			}
			seen[display.ID] = true

			annotateComments(display.Comments, 1, display, vc)
			page.Posts = append(page.Posts, &model.AnnotatedPost{
				Post:           display,
				DeleteID:       candidate.ID,
				IsYourPost:     display.AuthorID == vc.viewer.ID,
				HavePlused:     display.HasPlusFrom(vc.viewer.ID),
				InLibrary:      inLibrary[display.ID],
				AuthorFlagged:  vc.flaggedIDs[display.AuthorID],
				CanReply:       canCommentOnPost(vc, display),
				ViewingContext: req.Context,
				BoostBlame:     blame,
			})
			if len(page.Posts) == model.PostsPerPage {
				break
			}
		}

		// 不足一批说明候选已经耗尽
		if len(candidates) < model.PostsPerPage {
			break
		}
	}

	return page, nil
}

// resolveDisplay 决定候选行最终以哪个帖子展示。单帖和链接上下文不做
// 转发去重：boost 行直接解析为目标帖，原帖原样展示
func (s *FeedService) resolveDisplay(
	candidate *model.Post,
	targets map[int]*model.Post,
	vc *viewerContext,
	viewingContext string,
	target feedTarget,
) (*model.Post, *model.BoostBlame, bool) {
	if viewingContext == model.ContextSingle || viewingContext == model.ContextURL {
		if candidate.Type == model.PostTypeBoost {
			resolved := targets[candidate.ID]
			if resolved == nil {
				return nil, nil, true
			}
			return resolved, boostBlame(candidate.AuthorID, vc, viewingContext), false
		}
		return candidate, nil, false
	}

	targetUserID := 0
	if target.User != nil {
		targetUserID = target.User.ID
	}
	relevant := relevantBoosters(viewingContext, vc, targetUserID, target.Community)
	res := resolveBoostDedup(candidate, targets[candidate.ID], relevant, vc, viewingContext)
	return res.display, res.blame, res.suppressed
}

// resolveTarget 把请求里的标识符解析成各上下文需要的目标对象
func (s *FeedService) resolveTarget(vc *viewerContext, req *FeedRequest) (feedTarget, error) {
	var target feedTarget
	switch req.Context {
	case model.ContextUser:
		user, err := s.findUser(req.Identifier)
		if err != nil {
			return target, err
		}
		target.User = user
	case model.ContextCommunity:
		community, err := s.findCommunity(req.Identifier)
		if err != nil {
			return target, err
		}
		target.Community = community
	case model.ContextTag:
		target.Tag = req.Identifier
	case model.ContextSingle:
		postID, err := strconv.Atoi(req.Identifier)
		if err != nil {
			return target, errors.New(errors.ErrPostNotFound, "post not found")
		}
		target.PostID = postID
	case model.ContextURL:
		target.URL = req.Identifier
	case model.ContextLibrary:
		postIDs, err := s.libraryRepo.FindPostIDs(vc.viewer.ID)
		if err != nil {
			return target, err
		}
		target.PostIDs = postIDs
	case model.ContextHome:
	default:
		return target, errors.New(errors.ErrBadRequest, "unknown viewing context")
	}
	return target, nil
}

func (s *FeedService) findUser(identifier string) (*model.User, error) {
	if id, ok := util.ParseIdentifier(identifier); ok {
		user, err := s.userRepo.FindByID(id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, errors.New(errors.ErrUserNotFound, "user not found")
		}
		return user, nil
	}
	user, err := s.userRepo.FindByUsername(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

func (s *FeedService) findCommunity(identifier string) (*model.Community, error) {
	if id, ok := util.ParseIdentifier(identifier); ok {
		community, err := s.communityRepo.FindByID(id)
		if err != nil {
			return nil, err
		}
		if community == nil {
			return nil, errors.New(errors.ErrCommunityNotFound, "community not found")
		}
		return community, nil
	}
	community, err := s.communityRepo.FindBySlug(identifier)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, errors.New(errors.ErrCommunityNotFound, "community not found")
	}
	return community, nil
}

// loadBoostTargets 批量解析候选中 boost 行的目标帖，
// 返回 boost 行ID到目标帖的映射。目标已删除的 boost 行映射缺失
func (s *FeedService) loadBoostTargets(candidates []*model.Post) (map[int]*model.Post, error) {
	var targetIDs []int
	for _, c := range candidates {
		if c.Type == model.PostTypeBoost && c.BoostTargetID != nil {
			targetIDs = append(targetIDs, *c.BoostTargetID)
		}
	}
	if len(targetIDs) == 0 {
		return map[int]*model.Post{}, nil
	}
	posts, err := s.postRepo.FindByIDs(targetIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	targets := make(map[int]*model.Post, len(targetIDs))
	for _, c := range candidates {
		if c.Type == model.PostTypeBoost && c.BoostTargetID != nil {
			if t, ok := byID[*c.BoostTargetID]; ok {
				targets[c.ID] = t
			}
		}
	}
	return targets, nil
}

// hydratePosts 批量填充帖子和评论树里的作者对象、社区对象
func (s *FeedService) hydratePosts(posts []*model.Post) error {
	authorIDs := map[int]struct{}{}
	communityIDs := map[int]struct{}{}
	for _, p := range posts {
		authorIDs[p.AuthorID] = struct{}{}
		if p.CommunityID != nil {
			communityIDs[*p.CommunityID] = struct{}{}
		}
		collectCommentAuthorIDs(p.Comments, authorIDs)
	}

	users, err := s.userRepo.FindByIDs(setToSlice(authorIDs))
	if err != nil {
		return err
	}
	userByID := make(map[int]*model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	communityByID := map[int]*model.Community{}
	if len(communityIDs) > 0 {
		communities, err := s.communityRepo.FindByIDs(setToSlice(communityIDs))
		if err != nil {
			return err
		}
		for _, c := range communities {
			communityByID[c.ID] = c
		}
	}

	for _, p := range posts {
		p.Author = userByID[p.AuthorID]
		if p.CommunityID != nil {
			p.Community = communityByID[*p.CommunityID]
		}
		attachCommentAuthors(p.Comments, userByID)
	}
	return nil
}

func collectCommentAuthorIDs(comments []*model.Comment, into map[int]struct{}) {
	for _, c := range comments {
		into[c.AuthorID] = struct{}{}
		collectCommentAuthorIDs(c.Replies, into)
	}
}

func attachCommentAuthors(comments []*model.Comment, userByID map[int]*model.User) {
	for _, c := range comments {
		c.Author = userByID[c.AuthorID]
		attachCommentAuthors(c.Replies, userByID)
	}
}

func boostTargetList(targets map[int]*model.Post) []*model.Post {
	list := make([]*model.Post, 0, len(targets))
	for _, t := range targets {
		list = append(list, t)
	}
	return list
}

func setToSlice(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
