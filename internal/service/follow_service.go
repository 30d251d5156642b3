package service

import (
	"context"

	"socialconnect/internal/models"
	"socialconnect/internal/repository"
)

// FollowService manages the follow graph between users.
type FollowService struct {
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
) *FollowService {
	return &FollowService{
		followRepo:    followRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// Follow creates a follow edge from followerID to targetID. Returns true when
// a new edge was created, false when it already existed. Following yourself
// is rejected; following an unknown user is a not-found.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) (bool, error) {
	if followerID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	created, err := s.followRepo.Create(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}

	if created && s.notifications != nil {
		follower, ferr := s.userRepo.GetByID(ctx, followerID)
		if ferr == nil {
			s.notifications.NotifyFollow(ctx, follower, target.ID)
		}
	}
	return created, nil
}

// Unfollow removes the follow edge from followerID to targetID. Removing an
// edge that does not exist is a validation error so the client learns the
// state was already what it asked for.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot unfollow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	removed, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("You are not following this user")
	}
	return nil
}

// IsFollowing reports whether followerID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, targetID)
}

// Followers lists the users following userID, most recent follow first.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}

// Following lists the users userID follows, most recent follow first.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}

// Counts returns the follower and following counts for userID.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	followers, err = s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// Suggestions returns active users the viewer does not follow yet, optionally
// filtered by a username/email fragment.
func (s *FollowService) Suggestions(ctx context.Context, viewerID uint, query string, limit int) ([]models.User, error) {
	return s.followRepo.Suggestions(ctx, viewerID, query, limit)
}
