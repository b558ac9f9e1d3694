package service

import (
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// MockPostRepository 是 PostRepository 的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(id int) (*model.Post, error) {
	args := m.Called(id)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) FindByIDs(ids []int) ([]*model.Post, error) {
	args := m.Called(ids)
	posts, _ := args.Get(0).([]*model.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) FindByURL(url string) (*model.Post, error) {
	args := m.Called(url)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) FindCandidates(query *model.CandidateQuery) ([]*model.Post, error) {
	args := m.Called(query)
	posts, _ := args.Get(0).([]*model.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) Save(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPostRepository) DetachBoostsOf(targetID int) error {
	args := m.Called(targetID)
	return args.Error(0)
}

// MockUserRepository 是 UserRepository 的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ids []int) ([]*model.User, error) {
	args := m.Called(ids)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateSettings(userID int, settings model.UserSettings) error {
	args := m.Called(userID, settings)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockRelationshipRepository 是 RelationshipRepository 的模拟实现
type MockRelationshipRepository struct {
	mock.Mock
}

func (m *MockRelationshipRepository) Create(rel *model.Relationship) error {
	args := m.Called(rel)
	return args.Error(0)
}

func (m *MockRelationshipRepository) Delete(fromUserID, toUserID int, value string) error {
	args := m.Called(fromUserID, toUserID, value)
	return args.Error(0)
}

func (m *MockRelationshipRepository) Exists(fromUserID, toUserID int, value string) (bool, error) {
	args := m.Called(fromUserID, toUserID, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) FindTargets(fromUserID int, value string) ([]int, error) {
	args := m.Called(fromUserID, value)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

func (m *MockRelationshipRepository) FindSources(toUserID int, value string) ([]int, error) {
	args := m.Called(toUserID, value)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

func (m *MockRelationshipRepository) FindTargetsOfSources(fromUserIDs []int, value string) ([]int, error) {
	args := m.Called(fromUserIDs, value)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

// MockNotificationRepository 是 NotificationRepository 的模拟实现
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(notification *model.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByNotifiee(notifieeID, page, pageSize int) ([]*model.Notification, error) {
	args := m.Called(notifieeID, page, pageSize)
	notifications, _ := args.Get(0).([]*model.Notification)
	return notifications, args.Error(1)
}

func (m *MockNotificationRepository) MarkSeen(notifieeID int) error {
	args := m.Called(notifieeID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteBySubject(subjectID int) error {
	args := m.Called(subjectID)
	return args.Error(0)
}

// MockAudienceRepository 是 AudienceRepository 的模拟实现
type MockAudienceRepository struct {
	mock.Mock
}

func (m *MockAudienceRepository) Create(audience *model.Audience) error {
	args := m.Called(audience)
	return args.Error(0)
}

func (m *MockAudienceRepository) Update(audience *model.Audience) error {
	args := m.Called(audience)
	return args.Error(0)
}

func (m *MockAudienceRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAudienceRepository) FindByID(id int) (*model.Audience, error) {
	args := m.Called(id)
	audience, _ := args.Get(0).(*model.Audience)
	return audience, args.Error(1)
}

func (m *MockAudienceRepository) FindByIDs(ids []int) ([]*model.Audience, error) {
	args := m.Called(ids)
	audiences, _ := args.Get(0).([]*model.Audience)
	return audiences, args.Error(1)
}

func (m *MockAudienceRepository) FindByOwner(ownerID int) ([]*model.Audience, error) {
	args := m.Called(ownerID)
	audiences, _ := args.Get(0).([]*model.Audience)
	return audiences, args.Error(1)
}

func (m *MockAudienceRepository) FindIDsContainingUser(userID int) ([]int, error) {
	args := m.Called(userID)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

// MockCommunityRepository 是 CommunityRepository 的模拟实现
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) Create(community *model.Community) error {
	args := m.Called(community)
	return args.Error(0)
}

func (m *MockCommunityRepository) FindByID(id int) (*model.Community, error) {
	args := m.Called(id)
	community, _ := args.Get(0).(*model.Community)
	return community, args.Error(1)
}

func (m *MockCommunityRepository) FindBySlug(slug string) (*model.Community, error) {
	args := m.Called(slug)
	community, _ := args.Get(0).(*model.Community)
	return community, args.Error(1)
}

func (m *MockCommunityRepository) FindByIDs(ids []int) ([]*model.Community, error) {
	args := m.Called(ids)
	communities, _ := args.Get(0).([]*model.Community)
	return communities, args.Error(1)
}

func (m *MockCommunityRepository) FindAll() ([]*model.Community, error) {
	args := m.Called()
	communities, _ := args.Get(0).([]*model.Community)
	return communities, args.Error(1)
}

func (m *MockCommunityRepository) AddMember(communityID, userID int) error {
	args := m.Called(communityID, userID)
	return args.Error(0)
}

func (m *MockCommunityRepository) RemoveMember(communityID, userID int) error {
	args := m.Called(communityID, userID)
	return args.Error(0)
}

func (m *MockCommunityRepository) MuteMember(communityID, userID int) error {
	args := m.Called(communityID, userID)
	return args.Error(0)
}

func (m *MockCommunityRepository) UnmuteMember(communityID, userID int) error {
	args := m.Called(communityID, userID)
	return args.Error(0)
}

func (m *MockCommunityRepository) BanMember(communityID, userID int) error {
	args := m.Called(communityID, userID)
	return args.Error(0)
}

func (m *MockCommunityRepository) UnbanMember(communityID, userID int) error {
	args := m.Called(communityID, userID)
	return args.Error(0)
}

func (m *MockCommunityRepository) Touch(communityID int) error {
	args := m.Called(communityID)
	return args.Error(0)
}

// fakeFileStorage 测试用的空文件存储
type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	return path, nil
}

func (f *fakeFileStorage) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}
