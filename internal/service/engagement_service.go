package service

import (
	"context"

	"socialconnect/internal/models"
	"socialconnect/internal/repository"
	"socialconnect/internal/validation"
)

// EngagementService handles likes and comments on posts.
type EngagementService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	// isAdmin reports whether the user may moderate other users' content.
	isAdmin func(ctx context.Context, userID uint) bool
}

// NewEngagementService returns a new EngagementService. isAdmin may be nil,
// in which case nobody has moderator rights.
func NewEngagementService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	isAdmin func(ctx context.Context, userID uint) bool,
) *EngagementService {
	if isAdmin == nil {
		isAdmin = func(ctx context.Context, userID uint) bool { return false }
	}
	return &EngagementService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		userRepo:      userRepo,
		notifications: notifications,
		isAdmin:       isAdmin,
	}
}

// LikeResult reports the outcome of a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// ToggleLike flips the viewer's like on a post and returns the new state with
// the recomputed count. Liking sends a notification to the post's author;
// unliking never does.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	liked, count, err := s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked && s.notifications != nil {
		post, perr := s.postRepo.GetByID(ctx, postID, 0)
		if perr == nil {
			sender, serr := s.userRepo.GetByID(ctx, userID)
			if serr == nil {
				s.notifications.NotifyLike(ctx, sender, post.AuthorID, postID)
			}
		}
	}
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// IsLiked reports whether the user currently likes the post.
func (s *EngagementService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.postRepo.IsLiked(ctx, userID, postID)
}

// AddComment attaches a comment to an active post and notifies the author.
func (s *EngagementService) AddComment(ctx context.Context, authorID, postID uint, content string) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return nil, err
	}
	if !post.IsActive {
		return nil, models.NewNotFoundError("Post", postID)
	}

	comment := &models.Comment{
		AuthorID: authorID,
		PostID:   postID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		sender, serr := s.userRepo.GetByID(ctx, authorID)
		if serr == nil {
			s.notifications.NotifyComment(ctx, sender, post.AuthorID, postID)
		}
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// RemoveComment soft-deletes a comment. Only the comment's author or a
// moderator may remove it; the post's counter is recomputed from live rows.
func (s *EngagementService) RemoveComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID && !s.isAdmin(ctx, userID) {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.SoftDelete(ctx, commentID)
}

// ListComments returns the active comments on a post, newest first.
func (s *EngagementService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
