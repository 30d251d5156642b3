package models

import (
	"time"
)

// Follow is a directed edge: the follower follows the following user.
// The composite unique index makes duplicate follows impossible even under
// concurrent requests; the per-side indexes serve the followers/following
// listings ordered by edge creation time.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_edge;index:idx_follows_follower,priority:1" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_edge;index:idx_follows_following,priority:1" json:"following_id"`
	CreatedAt   time.Time `gorm:"index:idx_follows_follower,priority:2;index:idx_follows_following,priority:2" json:"created_at"`

	Follower  *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}
