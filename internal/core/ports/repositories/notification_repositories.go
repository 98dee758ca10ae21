package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// NotificationReader defines read operations for the notification inbox
type NotificationReader interface {
	FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error)
	FindNotificationsByUserID(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	CountNotificationsByUserID(ctx context.Context, userID string) (total int64, unread int64, err error)
}

// NotificationWriter defines write operations for the notification inbox
type NotificationWriter interface {
	// SaveNotification inserts n unless a row with the same ID exists.
	SaveNotification(ctx context.Context, n domain.Notification) error
	MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID string, readAt time.Time) (int64, error)
	DeleteNotification(ctx context.Context, notificationID string) error
	// DeleteExpiredNotifications removes rows whose expiry is before now.
	DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error)
}

// NotificationRepositoryFacade combines all notification-related repository interfaces
type NotificationRepositoryFacade interface {
	NotificationReader
	NotificationWriter
}

// OutboxRepository stores outbound events until they are delivered.
type OutboxRepository interface {
	// EnqueueOutboxMessage writes an event inside tx so it commits with the business change.
	EnqueueOutboxMessage(ctx context.Context, tx pgx.Tx, eventID, exchange, routingKey string, payload []byte) error

	// ClaimOutboxMessages moves up to limit due rows to processing and returns them.
	ClaimOutboxMessages(ctx context.Context, limit int, staleAfterSeconds int) ([]domain.OutboxMessage, error)

	MarkOutboxPublished(ctx context.Context, id int64) error
	MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error
}
