package repository

import (
	"context"
	"errors"

	"socialconnect/internal/cache"
	"socialconnect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	GetByAuthor(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Feed(ctx context.Context, viewerID uint, authorIDs []uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SoftDelete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	// ToggleLike flips the like state for (userID, postID) in one transaction
	// and recomputes the post's like_count from live rows. Returns the new
	// state and the fresh count.
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, likeCount int, err error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applyPostDetails adds the liked-by-viewer subquery so list and detail reads
// stay a single query per page.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID != 0 {
		return db.Select(
			"posts.*, EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked",
			viewerID,
		)
	}
	return db.Select("posts.*, ? AS liked", false)
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByAuthor(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("author_id = ? AND is_active = ?", authorID, true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListAll returns posts regardless of soft-delete state, for the admin panel.
func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Feed returns posts by the given authors, newest first with id as the
// tiebreaker. Inactive posts are included only when the viewer authored them.
func (r *postRepository) Feed(ctx context.Context, viewerID uint, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("author_id IN ?", authorIDs).
		Where("is_active = ? OR author_id = ?", true, viewerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) HardDelete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error) {
	var liked bool
	var likeCount int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		// Lock the post row so concurrent toggles serialize. Row locking is
		// postgres-only; sqlite serializes writers on its own.
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}
		if !post.IsActive {
			return models.NewNotFoundError("Post", postID)
		}

		var existing int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing > 0 {
			if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			liked = false
		} else {
			like := models.Like{UserID: userID, PostID: postID}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoNothing: true,
			}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		// Recompute from live rows rather than incrementing, so the stored
		// counter can never drift.
		var fresh int64
		if err := tx.Model(&models.Like{}).
			Where("post_id = ?", postID).
			Count(&fresh).Error; err != nil {
			return err
		}
		likeCount = int(fresh)

		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Update("like_count", likeCount).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, 0, err
		}
		return false, 0, models.NewInternalError(err)
	}

	cache.InvalidatePost(ctx, postID)
	return liked, likeCount, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ? AND is_active = ?", authorID, true).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
