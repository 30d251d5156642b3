// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in SocialConnect. Accounts start inactive and
// become active once the email address is verified or an admin activates them.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	FirstName   string     `gorm:"size:150" json:"first_name"`
	LastName    string     `gorm:"size:150" json:"last_name"`
	IsActive    bool       `gorm:"default:false" json:"is_active"`
	IsStaff     bool       `gorm:"default:false" json:"is_staff"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Posts   []Post   `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// DisplayName returns the user's full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
