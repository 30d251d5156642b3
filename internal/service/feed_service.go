package service

import (
	"context"

	"socialconnect/internal/models"
	"socialconnect/internal/repository"
)

const (
	// DefaultPageSize is used when the client does not specify one.
	DefaultPageSize = 20
	// MaxPageSize caps the client-requested page size.
	MaxPageSize = 50
)

// Page holds normalized pagination input.
type Page struct {
	Number int
	Size   int
}

// NormalizePage clamps raw page parameters into valid bounds. Pages are
// 1-based; size defaults to DefaultPageSize and is capped at MaxPageSize.
func NormalizePage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the row offset for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// FeedPage is one page of a composed feed.
type FeedPage struct {
	Posts    []*models.Post `json:"posts"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasNext  bool           `json:"has_next"`
}

// FeedService assembles the home timeline from the follow graph.
type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{postRepo: postRepo, followRepo: followRepo}
}

// Compose returns one page of the viewer's home feed: posts by followed
// users plus the viewer's own, newest first with id as the tiebreaker.
// Each post carries the liked-by-viewer flag computed in the same query.
// It fetches one row beyond the page to learn whether a next page exists.
func (s *FeedService) Compose(ctx context.Context, viewerID uint, page Page) (*FeedPage, error) {
	authorIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, viewerID)

	posts, err := s.postRepo.Feed(ctx, viewerID, authorIDs, page.Size+1, page.Offset())
	if err != nil {
		return nil, err
	}

	hasNext := len(posts) > page.Size
	if hasNext {
		posts = posts[:page.Size]
	}
	return &FeedPage{
		Posts:    posts,
		Page:     page.Number,
		PageSize: page.Size,
		HasNext:  hasNext,
	}, nil
}

// Explore returns one page of the global timeline of active posts, for both
// authenticated and anonymous viewers. viewerID 0 means anonymous.
func (s *FeedService) Explore(ctx context.Context, viewerID uint, page Page) (*FeedPage, error) {
	posts, err := s.postRepo.List(ctx, page.Size+1, page.Offset(), viewerID)
	if err != nil {
		return nil, err
	}
	hasNext := len(posts) > page.Size
	if hasNext {
		posts = posts[:page.Size]
	}
	return &FeedPage{
		Posts:    posts,
		Page:     page.Number,
		PageSize: page.Size,
		HasNext:  hasNext,
	}, nil
}
