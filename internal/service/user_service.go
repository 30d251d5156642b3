package service

import (
	"context"

	"socialconnect/internal/models"
	"socialconnect/internal/repository"
	"socialconnect/internal/storage"
	"socialconnect/internal/validation"
)

// UserService exposes profile reads gated by the owner's visibility setting,
// plus profile and avatar updates for the owner.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	blobs      storage.BlobStore
}

// NewUserService returns a new UserService. blobs may be nil when no object
// store is configured; avatar uploads then fail with a validation error.
func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	blobs storage.BlobStore,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		blobs:      blobs,
	}
}

// ProfileView is a profile enriched with live graph counts.
type ProfileView struct {
	User        *models.User    `json:"user"`
	Profile     *models.Profile `json:"profile"`
	IsFollowing bool            `json:"is_following"`
}

// GetProfile returns userID's profile if the viewer is allowed to see it.
// A hidden profile yields a forbidden error, never a not-found: profile
// existence is not masked. Counts are computed live from the graph.
func (s *UserService) GetProfile(ctx context.Context, viewer Viewer, userID uint) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile
	if profile == nil {
		profile, err = s.userRepo.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	isFollowing := false
	if viewer.Authenticated && viewer.ID != userID {
		isFollowing, err = s.followRepo.Exists(ctx, viewer.ID, userID)
		if err != nil {
			return nil, err
		}
	}

	if CanViewProfile(viewer, userID, profile.Visibility, isFollowing) == Deny {
		return nil, models.NewForbiddenError("This profile is not visible to you")
	}

	if profile.FollowersCount, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}
	if profile.PostsCount, err = s.postRepo.CountByAuthor(ctx, userID); err != nil {
		return nil, err
	}

	return &ProfileView{User: user, Profile: profile, IsFollowing: isFollowing}, nil
}

// GetProfileByUsername resolves a username and applies the same gate as
// GetProfile. An unknown username is a not-found.
func (s *UserService) GetProfileByUsername(ctx context.Context, viewer Viewer, username string) (*ProfileView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.GetProfile(ctx, viewer, user.ID)
}

// ProfileUpdate carries the owner-editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Bio        *string `json:"bio"`
	Website    *string `json:"website"`
	Location   *string `json:"location"`
	Visibility *string `json:"visibility"`
}

// UpdateProfile applies the owner's changes to their own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.Profile, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Bio != nil {
		if err := validation.ValidateBio(*update.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Bio = *update.Bio
	}
	if update.Website != nil {
		profile.Website = *update.Website
	}
	if update.Location != nil {
		if err := validation.ValidateLocation(*update.Location); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Location = *update.Location
	}
	if update.Visibility != nil {
		v := models.ProfileVisibility(*update.Visibility)
		if !v.Valid() {
			return nil, models.NewValidationError("Visibility must be public, private, or followers_only")
		}
		profile.Visibility = v
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UploadAvatar validates the image, stores it, and points the profile at the
// new URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, data []byte) (*models.Profile, error) {
	if s.blobs == nil {
		return nil, models.NewValidationError("Avatar uploads are not enabled")
	}
	contentType, err := validation.ValidateImage(data)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := storage.AvatarKey(userID, contentType)
	url, err := s.blobs.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	profile.AvatarURL = &url
	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

const (
	// Caps for the anonymous users root: 50 profiles unfiltered, 20 matches
	// on a fuzzy search.
	publicListLimit   = 50
	publicSearchLimit = 20
)

// ListUsers returns the first 50 active users ordered by username, or up to
// 20 case-insensitive substring matches when query is set.
func (s *UserService) ListUsers(ctx context.Context, query string) ([]models.User, error) {
	if query != "" {
		return s.userRepo.SearchActive(ctx, query, publicSearchLimit)
	}
	return s.userRepo.ListActive(ctx, publicListLimit, 0)
}

// FindByUsername is the exact-match variant of the users root. Unknown and
// deactivated usernames are both a not-found.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}
