package service

import (
	"context"
	"errors"
	"testing"

	"socialconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_Follow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("self follow rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil)
		_, err := svc.Follow(ctx, 1, 1)
		assertValidationError(t, err)
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewFollowService(noopFollowRepo(), userRepo, nil)
		_, err := svc.Follow(ctx, 1, 99)
		assertNotFoundError(t, err)
	})

	t.Run("new edge reports created", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil)
		created, err := svc.Follow(ctx, 1, 2)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("repeat follow reports existing", func(t *testing.T) {
		t.Parallel()
		followRepo := noopFollowRepo()
		followRepo.createFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
		svc := NewFollowService(followRepo, noopUserRepo(), nil)
		created, err := svc.Follow(ctx, 1, 2)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("new edge notifies target", func(t *testing.T) {
		t.Parallel()
		var stored []*models.Notification
		notificationRepo := noopNotificationRepo()
		notificationRepo.createFn = func(_ context.Context, n *models.Notification) error {
			stored = append(stored, n)
			return nil
		}
		publisher := &publisherStub{}
		notifications := NewNotificationService(notificationRepo, publisher)

		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), notifications)
		_, err := svc.Follow(ctx, 1, 2)
		require.NoError(t, err)

		require.Len(t, stored, 1)
		assert.Equal(t, models.NotificationFollow, stored[0].Type)
		assert.Equal(t, uint(2), stored[0].RecipientID)
		assert.Equal(t, uint(1), stored[0].SenderID)
		require.Len(t, publisher.published, 1)
		assert.Equal(t, uint(2), publisher.published[0].userID)
	})

	t.Run("repeat follow does not notify", func(t *testing.T) {
		t.Parallel()
		var stored []*models.Notification
		notificationRepo := noopNotificationRepo()
		notificationRepo.createFn = func(_ context.Context, n *models.Notification) error {
			stored = append(stored, n)
			return nil
		}
		followRepo := noopFollowRepo()
		followRepo.createFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }

		svc := NewFollowService(followRepo, noopUserRepo(), NewNotificationService(notificationRepo, nil))
		_, err := svc.Follow(ctx, 1, 2)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("self unfollow rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil)
		err := svc.Unfollow(ctx, 1, 1)
		assertValidationError(t, err)
	})

	t.Run("removes existing edge", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil)
		require.NoError(t, svc.Unfollow(ctx, 1, 2))
	})

	t.Run("missing edge rejected", func(t *testing.T) {
		t.Parallel()
		followRepo := noopFollowRepo()
		followRepo.deleteFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
		svc := NewFollowService(followRepo, noopUserRepo(), nil)
		err := svc.Unfollow(ctx, 1, 2)
		assertValidationError(t, err)
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewFollowService(noopFollowRepo(), userRepo, nil)
		err := svc.Unfollow(ctx, 1, 99)
		assertNotFoundError(t, err)
	})
}

func TestFollowService_Counts(t *testing.T) {
	t.Parallel()

	followRepo := noopFollowRepo()
	followRepo.countFollowersFn = func(_ context.Context, _ uint) (int64, error) { return 12, nil }
	followRepo.countFollowingFn = func(_ context.Context, _ uint) (int64, error) { return 5, nil }

	svc := NewFollowService(followRepo, noopUserRepo(), nil)
	followers, following, err := svc.Counts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12), followers)
	assert.Equal(t, int64(5), following)
}

func TestFollowService_Followers_UnknownUser(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("boom")
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) { return nil, repoErr }

	svc := NewFollowService(noopFollowRepo(), userRepo, nil)
	_, err := svc.Followers(context.Background(), 9, 20, 0)
	assert.ErrorIs(t, err, repoErr)
}
