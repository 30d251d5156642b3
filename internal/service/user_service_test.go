package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileUserRepo(visibility models.ProfileVisibility) *userRepoStub {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{
			ID:       id,
			Username: "owner",
			Profile:  &models.Profile{UserID: id, Visibility: visibility},
		}, nil
	}
	return userRepo
}

func TestUserService_GetProfile_Visibility(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("public profile visible to anonymous", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(profileUserRepo(models.VisibilityPublic), noopFollowRepo(), noopPostRepo(), nil)
		view, err := svc.GetProfile(ctx, Anonymous, 7)
		require.NoError(t, err)
		assert.Equal(t, uint(7), view.User.ID)
	})

	t.Run("private profile hidden from stranger with 403 not 404", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(profileUserRepo(models.VisibilityPrivate), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.GetProfile(ctx, Viewer{ID: 3, Authenticated: true}, 7)
		assertForbiddenError(t, err)
	})

	t.Run("private profile visible to owner", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(profileUserRepo(models.VisibilityPrivate), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.GetProfile(ctx, Viewer{ID: 7, Authenticated: true}, 7)
		require.NoError(t, err)
	})

	t.Run("followers-only visible to follower", func(t *testing.T) {
		t.Parallel()
		followRepo := noopFollowRepo()
		followRepo.existsFn = func(_ context.Context, followerID, followingID uint) (bool, error) {
			return followerID == 3 && followingID == 7, nil
		}
		svc := NewUserService(profileUserRepo(models.VisibilityFollowersOnly), followRepo, noopPostRepo(), nil)

		view, err := svc.GetProfile(ctx, Viewer{ID: 3, Authenticated: true}, 7)
		require.NoError(t, err)
		assert.True(t, view.IsFollowing)

		_, err = svc.GetProfile(ctx, Viewer{ID: 4, Authenticated: true}, 7)
		assertForbiddenError(t, err)
	})

	t.Run("unknown user is a not-found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.GetProfile(ctx, Anonymous, 99)
		assertNotFoundError(t, err)
	})

	t.Run("counts are computed live", func(t *testing.T) {
		t.Parallel()
		followRepo := noopFollowRepo()
		followRepo.countFollowersFn = func(_ context.Context, _ uint) (int64, error) { return 3, nil }
		followRepo.countFollowingFn = func(_ context.Context, _ uint) (int64, error) { return 2, nil }
		postRepo := noopPostRepo()
		postRepo.countByAuthorFn = func(_ context.Context, _ uint) (int64, error) { return 9, nil }

		svc := NewUserService(profileUserRepo(models.VisibilityPublic), followRepo, postRepo, nil)
		view, err := svc.GetProfile(ctx, Anonymous, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), view.Profile.FollowersCount)
		assert.Equal(t, int64(2), view.Profile.FollowingCount)
		assert.Equal(t, int64(9), view.Profile.PostsCount)
	})
}

func TestUserService_GetProfileByUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.GetProfileByUsername(ctx, Anonymous, "ghost")
		assertNotFoundError(t, err)
	})

	t.Run("resolves and gates", func(t *testing.T) {
		t.Parallel()
		userRepo := profileUserRepo(models.VisibilityPublic)
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 7, Username: username}, nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		view, err := svc.GetProfileByUsername(ctx, Anonymous, "owner")
		require.NoError(t, err)
		assert.Equal(t, uint(7), view.User.ID)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	str := func(s string) *string { return &s }

	t.Run("bio too long", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.UpdateProfile(ctx, 1, ProfileUpdate{Bio: str(strings.Repeat("x", 161))})
		assertValidationError(t, err)
	})

	t.Run("invalid visibility", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.UpdateProfile(ctx, 1, ProfileUpdate{Visibility: str("friends")})
		assertValidationError(t, err)
	})

	t.Run("partial update leaves other fields", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getProfileFn = func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{UserID: userID, Bio: "old bio", Location: "Berlin", Visibility: models.VisibilityPublic}, nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		profile, err := svc.UpdateProfile(ctx, 1, ProfileUpdate{Visibility: str("followers_only")})
		require.NoError(t, err)
		assert.Equal(t, "old bio", profile.Bio)
		assert.Equal(t, "Berlin", profile.Location)
		assert.Equal(t, models.VisibilityFollowersOnly, profile.Visibility)
	})
}

func TestUserService_UploadAvatar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores image and updates profile", func(t *testing.T) {
		t.Parallel()
		blobs := newBlobStoreStub()
		var saved *models.Profile
		userRepo := noopUserRepo()
		userRepo.updateProfileFn = func(_ context.Context, p *models.Profile) error {
			saved = p
			return nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), blobs)
		profile, err := svc.UploadAvatar(ctx, 1, fakeJPEG())
		require.NoError(t, err)
		require.NotNil(t, profile.AvatarURL)
		assert.Contains(t, *profile.AvatarURL, "https://cdn.example.com/avatars/1_")
		require.NotNil(t, saved)
	})

	t.Run("rejects non-image payload", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowRepo(), noopPostRepo(), newBlobStoreStub())
		_, err := svc.UploadAvatar(ctx, 1, []byte("plain text"))
		assertValidationError(t, err)
	})

	t.Run("rejects when uploads disabled", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.UploadAvatar(ctx, 1, fakeJPEG())
		assertValidationError(t, err)
	})

	t.Run("store failure is caller recoverable", func(t *testing.T) {
		t.Parallel()
		blobs := newBlobStoreStub()
		blobs.uploadErr = errors.New("bucket unavailable")
		saved := false
		userRepo := noopUserRepo()
		userRepo.updateProfileFn = func(_ context.Context, _ *models.Profile) error {
			saved = true
			return nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), blobs)
		_, err := svc.UploadAvatar(ctx, 1, fakeJPEG())
		assertValidationError(t, err)
		assert.False(t, saved, "profile must keep its old avatar when the upload fails")
	})
}

func TestUserService_ListUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unfiltered listing asks for fifty", func(t *testing.T) {
		t.Parallel()
		var gotLimit, gotOffset int
		userRepo := noopUserRepo()
		userRepo.listActiveFn = func(_ context.Context, limit, offset int) ([]models.User, error) {
			gotLimit, gotOffset = limit, offset
			return []models.User{{ID: 1}}, nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		users, err := svc.ListUsers(ctx, "")
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, 50, gotLimit)
		assert.Zero(t, gotOffset)
	})

	t.Run("fuzzy search caps at twenty", func(t *testing.T) {
		t.Parallel()
		var gotQuery string
		var gotLimit int
		userRepo := noopUserRepo()
		userRepo.searchActiveFn = func(_ context.Context, query string, limit int) ([]models.User, error) {
			gotQuery, gotLimit = query, limit
			return nil, nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.ListUsers(ctx, "ali")
		require.NoError(t, err)
		assert.Equal(t, "ali", gotQuery)
		assert.Equal(t, 20, gotLimit)
	})
}

func TestUserService_FindByUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("active user found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 3, Username: "alice", IsActive: true}, nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		user, err := svc.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint(3), user.ID)
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.FindByUsername(ctx, "nobody")
		assertNotFoundError(t, err)
	})

	t.Run("deactivated user is not found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 4, Username: "gone", IsActive: false}, nil
		}
		svc := NewUserService(userRepo, noopFollowRepo(), noopPostRepo(), nil)
		_, err := svc.FindByUsername(ctx, "gone")
		assertNotFoundError(t, err)
	})
}
