package models

import (
	"time"
)

// Like records that a user likes a post. The row's existence is the fact:
// unliking hard-deletes it, and the composite unique index collapses
// concurrent duplicate likes.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
