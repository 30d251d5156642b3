package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	getByUsernameFn     func(context.Context, string) (*models.User, error)
	createWithProfileFn func(context.Context, *models.User, *models.Profile) error
	updateFn            func(context.Context, *models.User) error
	touchLastLoginFn    func(context.Context, uint) error
	setActiveFn         func(context.Context, uint, bool) error
	getProfileFn        func(context.Context, uint) (*models.Profile, error)
	updateProfileFn     func(context.Context, *models.Profile) error
	listActiveFn        func(context.Context, int, int) ([]models.User, error)
	searchActiveFn      func(context.Context, string, int) ([]models.User, error)
	listNonStaffFn      func(context.Context, int, int) ([]models.User, error)
	countAllFn          func(context.Context) (int64, error)
	countActiveSinceFn  func(context.Context, time.Time) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	return s.createWithProfileFn(ctx, user, profile)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) TouchLastLogin(ctx context.Context, id uint) error {
	return s.touchLastLoginFn(ctx, id)
}
func (s *userRepoStub) SetActive(ctx context.Context, id uint, active bool) error {
	return s.setActiveFn(ctx, id, active)
}
func (s *userRepoStub) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getProfileFn(ctx, userID)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return s.updateProfileFn(ctx, profile)
}
func (s *userRepoStub) ListActive(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listActiveFn(ctx, limit, offset)
}
func (s *userRepoStub) SearchActive(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.searchActiveFn(ctx, query, limit)
}
func (s *userRepoStub) ListNonStaff(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listNonStaffFn(ctx, limit, offset)
}
func (s *userRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}
func (s *userRepoStub) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	return s.countActiveSinceFn(ctx, since)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "someone"}, nil
		},
		getByEmailFn:        func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createWithProfileFn: func(_ context.Context, _ *models.User, _ *models.Profile) error { return nil },
		updateFn:            func(_ context.Context, _ *models.User) error { return nil },
		touchLastLoginFn:    func(_ context.Context, _ uint) error { return nil },
		setActiveFn:         func(_ context.Context, _ uint, _ bool) error { return nil },
		getProfileFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{UserID: userID, Visibility: models.VisibilityPublic}, nil
		},
		updateProfileFn:    func(_ context.Context, _ *models.Profile) error { return nil },
		listActiveFn:       func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		searchActiveFn:     func(_ context.Context, _ string, _ int) ([]models.User, error) { return nil, nil },
		listNonStaffFn:     func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		countAllFn:         func(_ context.Context) (int64, error) { return 0, nil },
		countActiveSinceFn: func(_ context.Context, _ time.Time) (int64, error) { return 0, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn         func(context.Context, uint, uint) (bool, error)
	deleteFn         func(context.Context, uint, uint) (bool, error)
	existsFn         func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
	listFollowersFn  func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn  func(context.Context, uint, int, int) ([]models.User, error)
	followingIDsFn   func(context.Context, uint) ([]uint, error)
	suggestionsFn    func(context.Context, uint, string, int) ([]models.User, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.createFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) Suggestions(ctx context.Context, viewerID uint, query string, limit int) ([]models.User, error) {
	return s.suggestionsFn(ctx, viewerID, query, limit)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		deleteFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsFn:         func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listFollowersFn:  func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		listFollowingFn:  func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		followingIDsFn:   func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		suggestionsFn:    func(_ context.Context, _ uint, _ string, _ int) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	getByAuthorFn   func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listFn          func(context.Context, int, int, uint) ([]*models.Post, error)
	listAllFn       func(context.Context, int, int) ([]*models.Post, error)
	feedFn          func(context.Context, uint, []uint, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	softDeleteFn    func(context.Context, uint) error
	hardDeleteFn    func(context.Context, uint) error
	isLikedFn       func(context.Context, uint, uint) (bool, error)
	toggleLikeFn    func(context.Context, uint, uint) (bool, int, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
	countAllFn      func(context.Context) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetByAuthor(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.getByAuthorFn(ctx, authorID, limit, offset, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listAllFn(ctx, limit, offset)
}
func (s *postRepoStub) Feed(ctx context.Context, viewerID uint, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	return s.feedFn(ctx, viewerID, authorIDs, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *postRepoStub) HardDelete(ctx context.Context, id uint) error {
	return s.hardDeleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, IsActive: true}, nil
		},
		getByAuthorFn:   func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listFn:          func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listAllFn:       func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		feedFn:          func(_ context.Context, _ uint, _ []uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		softDeleteFn:    func(_ context.Context, _ uint) error { return nil },
		hardDeleteFn:    func(_ context.Context, _ uint) error { return nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		toggleLikeFn:    func(_ context.Context, _, _ uint) (bool, int, error) { return true, 1, nil },
		countByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countAllFn:      func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	softDeleteFn func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, IsActive: true}, nil
		},
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		softDeleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn          func(context.Context, *models.Notification) error
	listByRecipientFn func(context.Context, uint, int, int) ([]*models.Notification, error)
	markReadFn        func(context.Context, uint, uint) (bool, error)
	markAllReadFn     func(context.Context, uint) (int64, error)
	countUnreadFn     func(context.Context, uint) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, limit, offset)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id, recipientID uint) (bool, error) {
	return s.markReadFn(ctx, id, recipientID)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.countUnreadFn(ctx, recipientID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:          func(_ context.Context, _ *models.Notification) error { return nil },
		listByRecipientFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Notification, error) { return nil, nil },
		markReadFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		markAllReadFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countUnreadFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// blobStoreStub is an in-memory storage.BlobStore. Set uploadErr to make
// every upload fail.
type blobStoreStub struct {
	uploads   map[string][]byte
	uploadErr error
}

func newBlobStoreStub() *blobStoreStub {
	return &blobStoreStub{uploads: map[string][]byte{}}
}

func (s *blobStoreStub) Upload(_ context.Context, key string, content []byte, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads[key] = content
	return "https://cdn.example.com/" + key, nil
}

func (s *blobStoreStub) Delete(_ context.Context, key string) error {
	delete(s.uploads, key)
	return nil
}

// publisherStub records realtime publishes.
type publisherStub struct {
	published []publishedMessage
}

type publishedMessage struct {
	userID  uint
	payload string
}

func (s *publisherStub) PublishUser(_ context.Context, userID uint, payload string) error {
	s.published = append(s.published, publishedMessage{userID: userID, payload: payload})
	return nil
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// fakeJPEG returns bytes that pass the JPEG sniff.
func fakeJPEG() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("fake image body")...)
}
