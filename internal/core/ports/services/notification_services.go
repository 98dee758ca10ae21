package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// NotificationPublisherSvc records notification events in the outbox of the caller's transaction.
type NotificationPublisherSvc interface {
	Enqueue(ctx context.Context, tx pgx.Tx, events ...domain.NotificationEvent) error
}

// NotificationInboxSvc serves a user's notifications.
type NotificationInboxSvc interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	CountNotifications(ctx context.Context, userID string) (total int64, unread int64, err error)
	// MarkAsRead fails with ErrAccessDenied when the notification belongs to another user.
	MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

// NotificationDeliverySvc is used by background workers.
type NotificationDeliverySvc interface {
	// Deliver stores the inbox entry for an event; delivering the same event twice is a no-op.
	Deliver(ctx context.Context, event domain.NotificationEvent) error

	// CleanupExpired removes expired notifications and returns how many were removed.
	CleanupExpired(ctx context.Context) (int64, error)
}

// NotificationSvcFacade combines all notification-related service interfaces
type NotificationSvcFacade interface {
	NotificationPublisherSvc
	NotificationInboxSvc
	NotificationDeliverySvc
}
