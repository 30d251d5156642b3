package repository

import (
	"context"
	"errors"

	"socialconnect/internal/cache"
	"socialconnect/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// Create inserts the comment and recomputes the post's comment_count from
	// live active rows in the same transaction.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	// SoftDelete deactivates the comment and recomputes the post's
	// comment_count in the same transaction.
	SoftDelete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// recountComments refreshes the denormalized counter from active rows.
func recountComments(tx *gorm.DB, postID uint) error {
	var fresh int64
	if err := tx.Model(&models.Comment{}).
		Where("post_id = ? AND is_active = ?", postID, true).
		Count(&fresh).Error; err != nil {
		return err
	}
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("comment_count", fresh).Error
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return recountComments(tx, comment.PostID)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ? AND is_active = ?", postID, true).
		Order("created_at DESC, id DESC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return err
		}
		postID = comment.PostID
		if err := tx.Model(&models.Comment{}).
			Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return recountComments(tx, comment.PostID)
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
