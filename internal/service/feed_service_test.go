package service

import (
	"context"
	"testing"

	"socialconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		number, size int
		wantNumber   int
		wantSize     int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize},
		{"negative page", -3, 10, 1, 10},
		{"size capped", 1, 500, 1, MaxPageSize},
		{"size at cap kept", 2, MaxPageSize, 2, MaxPageSize},
		{"negative size", 1, -1, 1, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := NormalizePage(tt.number, tt.size)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantSize, page.Size)
		})
	}
}

func TestPage_Offset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, NormalizePage(1, 20).Offset())
	assert.Equal(t, 20, NormalizePage(2, 20).Offset())
	assert.Equal(t, 100, NormalizePage(3, 50).Offset())
}

func TestFeedService_Compose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("includes self among authors", func(t *testing.T) {
		t.Parallel()
		var gotAuthors []uint
		followRepo := noopFollowRepo()
		followRepo.followingIDsFn = func(_ context.Context, _ uint) ([]uint, error) { return []uint{2, 3}, nil }
		postRepo := noopPostRepo()
		postRepo.feedFn = func(_ context.Context, _ uint, authorIDs []uint, _, _ int) ([]*models.Post, error) {
			gotAuthors = authorIDs
			return nil, nil
		}

		svc := NewFeedService(postRepo, followRepo)
		_, err := svc.Compose(ctx, 1, NormalizePage(1, 20))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{1, 2, 3}, gotAuthors)
	})

	t.Run("viewer with no follows still sees own posts", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.feedFn = func(_ context.Context, _ uint, authorIDs []uint, _, _ int) ([]*models.Post, error) {
			assert.Equal(t, []uint{1}, authorIDs)
			return []*models.Post{{ID: 10, AuthorID: 1}}, nil
		}

		svc := NewFeedService(postRepo, noopFollowRepo())
		page, err := svc.Compose(ctx, 1, NormalizePage(1, 20))
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		assert.False(t, page.HasNext)
	})

	t.Run("fetches one extra row to detect next page", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.feedFn = func(_ context.Context, _ uint, _ []uint, limit, offset int) ([]*models.Post, error) {
			assert.Equal(t, 3, limit)
			assert.Equal(t, 2, offset)
			posts := make([]*models.Post, 3)
			for i := range posts {
				posts[i] = &models.Post{ID: uint(i + 1)}
			}
			return posts, nil
		}

		svc := NewFeedService(postRepo, noopFollowRepo())
		page, err := svc.Compose(ctx, 1, NormalizePage(2, 2))
		require.NoError(t, err)
		assert.Len(t, page.Posts, 2)
		assert.True(t, page.HasNext)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.PageSize)
	})

	t.Run("exact page has no next", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.feedFn = func(_ context.Context, _ uint, _ []uint, _, _ int) ([]*models.Post, error) {
			return []*models.Post{{ID: 1}, {ID: 2}}, nil
		}

		svc := NewFeedService(postRepo, noopFollowRepo())
		page, err := svc.Compose(ctx, 1, NormalizePage(1, 2))
		require.NoError(t, err)
		assert.Len(t, page.Posts, 2)
		assert.False(t, page.HasNext)
	})
}

func TestFeedService_Explore(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.listFn = func(_ context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
		assert.Equal(t, 21, limit)
		assert.Equal(t, 0, offset)
		assert.Equal(t, uint(0), viewerID)
		return []*models.Post{{ID: 1}}, nil
	}

	svc := NewFeedService(postRepo, noopFollowRepo())
	page, err := svc.Explore(context.Background(), 0, NormalizePage(1, 20))
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.False(t, page.HasNext)
}
