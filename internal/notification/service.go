package notification

import (
	"context"
	"time"

	"GHXPortal/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationService manages the read state of a user's in-app notifications.
type NotificationService struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewNotificationService(store Store, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: logger.Named("notification.inbox"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) ListMine(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]*Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	items, err := s.store.ListForRecipient(ctx, userID, unreadOnly, limit)
	if err != nil {
		s.logger.Error("list notifications", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, apperr.Internal("Failed to fetch notifications: "+err.Error(), err)
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("count unread notifications", zap.String("user_id", userID.Hex()), zap.Error(err))
		return 0, apperr.Internal("Failed to count notifications: "+err.Error(), err)
	}
	return n, nil
}

// MarkRead returns 404 for notifications that belong to someone else.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	found, err := s.store.MarkRead(ctx, id, userID, s.now())
	if err != nil {
		s.logger.Error("mark notification read", zap.String("id", id.Hex()), zap.Error(err))
		return apperr.Internal("Failed to update notification: "+err.Error(), err)
	}
	if !found {
		return apperr.NotFound("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		s.logger.Error("mark all notifications read", zap.String("user_id", userID.Hex()), zap.Error(err))
		return 0, apperr.Internal("Failed to update notifications: "+err.Error(), err)
	}
	return n, nil
}
