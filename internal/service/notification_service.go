package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"socialconnect/internal/middleware"
	"socialconnect/internal/models"
	"socialconnect/internal/repository"
)

// RealtimePublisher pushes a payload to a user's realtime channel.
// *notifications.Notifier satisfies this; tests substitute a recorder.
type RealtimePublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// NotificationService records social events and fans them out over the
// realtime channel. Publishing is fire and forget: a Redis failure is
// logged, never surfaced to the triggering request.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        RealtimePublisher
}

// NewNotificationService returns a new NotificationService. publisher may be
// nil when Redis is unavailable; events are then stored without fan-out.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publisher RealtimePublisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// NotifyFollow records that sender started following recipient.
func (s *NotificationService) NotifyFollow(ctx context.Context, sender *models.User, recipientID uint) {
	s.record(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        models.NotificationFollow,
		Message:     fmt.Sprintf("%s started following you", sender.Username),
	})
}

// NotifyLike records that sender liked the recipient's post.
func (s *NotificationService) NotifyLike(ctx context.Context, sender *models.User, recipientID, postID uint) {
	s.record(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        models.NotificationLike,
		PostID:      &postID,
		Message:     fmt.Sprintf("%s liked your post", sender.Username),
	})
}

// NotifyComment records that sender commented on the recipient's post.
func (s *NotificationService) NotifyComment(ctx context.Context, sender *models.User, recipientID, postID uint) {
	s.record(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        models.NotificationComment,
		PostID:      &postID,
		Message:     fmt.Sprintf("%s commented on your post", sender.Username),
	})
}

// record persists the notification and publishes it. Neither failure aborts
// the social action that triggered it.
func (s *NotificationService) record(ctx context.Context, n *models.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to store notification",
			slog.String("type", string(n.Type)),
			slog.Any("recipient_id", n.RecipientID),
			slog.String("error", err.Error()),
		)
		return
	}

	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal notification", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Any("recipient_id", n.RecipientID),
			slog.String("error", err.Error()),
		)
		return
	}
	middleware.NotificationsPublished.WithLabelValues(string(n.Type)).Inc()
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit, offset)
}

// MarkRead flags a single notification as read for its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) error {
	ok, err := s.notificationRepo.MarkRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

// MarkAllRead flags all of the recipient's notifications as read and returns
// how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}

// CountUnread returns the recipient's unread notification count.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipientID)
}
