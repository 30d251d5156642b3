package models

import (
	"time"
)

// ProfileVisibility controls who may view a profile.
type ProfileVisibility string

const (
	VisibilityPublic        ProfileVisibility = "public"
	VisibilityPrivate       ProfileVisibility = "private"
	VisibilityFollowersOnly ProfileVisibility = "followers_only"
)

// Valid reports whether v is a recognized visibility value.
func (v ProfileVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFollowersOnly:
		return true
	}
	return false
}

// Profile holds the public-facing attributes of a user. A profile is created
// in the same transaction as its user, so every user has exactly one.
type Profile struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio        string            `gorm:"size:160" json:"bio"`
	AvatarURL  *string           `json:"avatar_url"`
	Website    string            `gorm:"size:200" json:"website"`
	Location   string            `gorm:"size:100" json:"location"`
	Visibility ProfileVisibility `gorm:"size:20;default:public" json:"visibility"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	// Live counts computed per request, never persisted.
	FollowersCount int64 `gorm:"-" json:"followers_count"`
	FollowingCount int64 `gorm:"-" json:"following_count"`
	PostsCount     int64 `gorm:"-" json:"posts_count"`
}
