package service

import (
	"context"

	"socialconnect/internal/models"
	"socialconnect/internal/repository"
	"socialconnect/internal/storage"
	"socialconnect/internal/validation"
)

// PostService handles post authoring and moderation.
type PostService struct {
	postRepo repository.PostRepository
	blobs    storage.BlobStore
	isAdmin  func(ctx context.Context, userID uint) bool
}

// NewPostService returns a new PostService. blobs may be nil; image uploads
// then fail with a validation error. isAdmin may be nil.
func NewPostService(
	postRepo repository.PostRepository,
	blobs storage.BlobStore,
	isAdmin func(ctx context.Context, userID uint) bool,
) *PostService {
	if isAdmin == nil {
		isAdmin = func(ctx context.Context, userID uint) bool { return false }
	}
	return &PostService{postRepo: postRepo, blobs: blobs, isAdmin: isAdmin}
}

// PostInput carries the author-supplied fields for a new or edited post.
type PostInput struct {
	Content  string `json:"content"`
	Category string `json:"category"`
	// Image is an optional raw upload; empty means no image change.
	Image []byte `json:"-"`
}

// Create publishes a new post. Content beyond the length limit is truncated,
// not rejected. An attached image is validated and stored first so a storage
// failure never leaves a post pointing at a missing object.
func (s *PostService) Create(ctx context.Context, authorID uint, input PostInput) (*models.Post, error) {
	content := validation.TruncatePostContent(input.Content)
	if err := validation.ValidatePostContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	category := models.PostCategory(input.Category)
	if input.Category == "" {
		category = models.CategoryGeneral
	}
	if !category.Valid() {
		return nil, models.NewValidationError("Category must be general, announcement, or question")
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		Category: category,
		IsActive: true,
	}

	if len(input.Image) > 0 {
		url, err := s.uploadImage(ctx, authorID, input.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, authorID)
}

// Get returns a single active post with the viewer's like flag. Authors can
// see their own soft-deleted posts; everyone else gets a not-found.
func (s *PostService) Get(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if !post.IsActive && post.AuthorID != viewerID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// ByAuthor returns one page of an author's active posts.
func (s *PostService) ByAuthor(ctx context.Context, viewerID, authorID uint, page Page) ([]*models.Post, error) {
	return s.postRepo.GetByAuthor(ctx, authorID, page.Size, page.Offset(), viewerID)
}

// Update edits a post's content and category. Only the author may edit.
func (s *PostService) Update(ctx context.Context, userID, postID uint, input PostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	content := validation.TruncatePostContent(input.Content)
	if err := validation.ValidatePostContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post.Content = content

	if input.Category != "" {
		category := models.PostCategory(input.Category)
		if !category.Valid() {
			return nil, models.NewValidationError("Category must be general, announcement, or question")
		}
		post.Category = category
	}

	if len(input.Image) > 0 {
		url, err := s.uploadImage(ctx, userID, input.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete soft-deletes a post. The author or a moderator may delete it.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.AuthorID != userID && !s.isAdmin(ctx, userID) {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.SoftDelete(ctx, postID)
}

func (s *PostService) uploadImage(ctx context.Context, userID uint, data []byte) (string, error) {
	if s.blobs == nil {
		return "", models.NewValidationError("Image uploads are not enabled")
	}
	contentType, err := validation.ValidateImage(data)
	if err != nil {
		return "", models.NewValidationError(err.Error())
	}
	url, err := s.blobs.Upload(ctx, storage.PostImageKey(userID, contentType), data, contentType)
	if err != nil {
		return "", models.NewStorageError(err)
	}
	return url, nil
}
