package models

import (
	"time"
)

// Comment is a reply on a post. Comments are soft-deleted by flipping
// IsActive so threads keep their shape; only active comments count toward
// the post's comment_count.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Content   string    `gorm:"size:200;not null" json:"content"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
