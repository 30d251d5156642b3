package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialconnect/internal/database"
	"socialconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Profile{
		UserID:     user.ID,
		Visibility: models.VisibilityPublic,
	}).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		Category: models.CategoryGeneral,
		IsActive: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	liker := createTestUser(t, db, "liker")
	post := createTestPost(t, db, author.ID, "hello")

	liked, count, err := repo.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = repo.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 0, stored.LikeCount)
}

func TestToggleLike_RecountRepairsDriftedCounter(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "driftauthor")
	a := createTestUser(t, db, "drifta")
	b := createTestUser(t, db, "driftb")
	post := createTestPost(t, db, author.ID, "drift")

	_, _, err := repo.ToggleLike(ctx, a.ID, post.ID)
	require.NoError(t, err)

	// Corrupt the stored counter out-of-band.
	require.NoError(t, db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		Update("like_count", 99).Error)

	_, count, err := repo.ToggleLike(ctx, b.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 2, stored.LikeCount)
}

func TestToggleLike_MissingAndSoftDeletedPosts(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "ghostauthor")
	post := createTestPost(t, db, author.ID, "soon gone")
	require.NoError(t, repo.SoftDelete(ctx, post.ID))

	for _, postID := range []uint{post.ID, 9999} {
		_, _, err := repo.ToggleLike(ctx, author.ID, postID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	}
}

func TestGetByID_LikedFlagPerViewer(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "flagauthor")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, author.ID, "flagged")

	_, _, err := repo.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, got.Liked)
	assert.Equal(t, 1, got.LikeCount)

	// Anonymous viewers never see liked=true.
	got, err = repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, got.Liked)

	got, err = repo.GetByID(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)
}

func TestFeed_OrderingAndScope(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	viewer := createTestUser(t, db, "feedviewer")
	followed := createTestUser(t, db, "feedfollowed")
	stranger := createTestUser(t, db, "feedstranger")

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := createTestPost(t, db, followed.ID, "older")
	require.NoError(t, db.Model(older).Update("created_at", ts.Add(-time.Hour)).Error)
	first := createTestPost(t, db, followed.ID, "tied first")
	second := createTestPost(t, db, viewer.ID, "tied second")
	// Identical timestamps force the id tiebreaker.
	require.NoError(t, db.Model(first).Update("created_at", ts).Error)
	require.NoError(t, db.Model(second).Update("created_at", ts).Error)
	createTestPost(t, db, stranger.ID, "out of scope")

	hidden := createTestPost(t, db, followed.ID, "followed but deleted")
	require.NoError(t, repo.SoftDelete(ctx, hidden.ID))
	mine := createTestPost(t, db, viewer.ID, "mine but deleted")
	require.NoError(t, repo.SoftDelete(ctx, mine.ID))
	require.NoError(t, db.Model(mine).Update("created_at", ts.Add(-2*time.Hour)).Error)

	posts, err := repo.Feed(ctx, viewer.ID, []uint{followed.ID, viewer.ID}, 50, 0)
	require.NoError(t, err)
	require.Len(t, posts, 4)

	// Newest first; at equal created_at the higher id wins; the viewer's own
	// soft-deleted post stays visible while the followed author's does not.
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, older.ID, posts[2].ID)
	assert.Equal(t, mine.ID, posts[3].ID)
}

func TestFeed_EmptyAuthorSet(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)

	posts, err := repo.Feed(context.Background(), 1, nil, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestHardDelete_RemovesLikesAndComments(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "hardauthor")
	fan := createTestUser(t, db, "hardfan")
	post := createTestPost(t, db, author.ID, "doomed")

	_, _, err := repo.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, comments.Create(ctx, &models.Comment{
		AuthorID: fan.ID,
		PostID:   post.ID,
		Content:  "rip",
		IsActive: true,
	}))

	require.NoError(t, repo.HardDelete(ctx, post.ID))

	var likes, comms, posts int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comms).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&posts).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comms)
	assert.Zero(t, posts)
}

func TestCommentSoftDelete_RecountsActiveOnly(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "commauthor")
	post := createTestPost(t, db, author.ID, "discuss")

	first := &models.Comment{AuthorID: author.ID, PostID: post.ID, Content: "one", IsActive: true}
	second := &models.Comment{AuthorID: author.ID, PostID: post.ID, Content: "two", IsActive: true}
	require.NoError(t, comments.Create(ctx, first))
	require.NoError(t, comments.Create(ctx, second))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 2, stored.CommentCount)

	require.NoError(t, comments.SoftDelete(ctx, first.ID))

	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 1, stored.CommentCount)

	listed, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	err = comments.SoftDelete(ctx, 4242)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCreateWithProfile_DuplicateIsConflict(t *testing.T) {
	t.Parallel()
	db := openRepoDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	err := users.CreateWithProfile(ctx,
		&models.User{Username: "taken", Email: "taken@example.com", Password: "x"},
		&models.Profile{})
	require.NoError(t, err)

	err = users.CreateWithProfile(ctx,
		&models.User{Username: "taken", Email: "other@example.com", Password: "x"},
		&models.Profile{})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// The failed transaction must not leave an orphan profile behind.
	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}
