package models

import (
	"time"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification is an immutable record of a social event addressed to a user.
// Only IsRead ever changes after creation.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notifications_recipient,priority:1" json:"recipient_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	PostID      *uint            `json:"post_id,omitempty"`
	Message     string           `gorm:"size:200" json:"message"`
	IsRead      bool             `gorm:"default:false" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index:idx_notifications_recipient,priority:2" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
