package models

import (
	"time"
)

// PostCategory classifies a post.
type PostCategory string

const (
	CategoryGeneral      PostCategory = "general"
	CategoryAnnouncement PostCategory = "announcement"
	CategoryQuestion     PostCategory = "question"
)

// Valid reports whether c is a recognized category.
func (c PostCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryAnnouncement, CategoryQuestion:
		return true
	}
	return false
}

// Post is a piece of content authored by a user. LikeCount and CommentCount
// are denormalized and recomputed from live rows inside every transaction
// that changes them; they are never blindly incremented.
type Post struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	AuthorID     uint         `gorm:"not null;index" json:"author_id"`
	Content      string       `gorm:"size:280;not null" json:"content"`
	Category     PostCategory `gorm:"size:20;default:general" json:"category"`
	ImageURL     string       `json:"image_url,omitempty"`
	IsActive     bool         `gorm:"default:true;index" json:"is_active"`
	LikeCount    int          `gorm:"default:0" json:"like_count"`
	CommentCount int          `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// Liked indicates whether the requesting viewer liked this post (computed at query time).
	Liked bool `gorm:"->" json:"liked"`
}
