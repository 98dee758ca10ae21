package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `notification_id, user_id, title, message, type, priority, is_read, read_at, created_at, expires_at`

type PgxNotificationRepository struct {
	pool *pgxpool.Pool
}

func newPgxNotificationRepository(pool *pgxpool.Pool) portsrepo.NotificationRepositoryFacade {
	return &PgxNotificationRepository{pool: pool}
}

var _ portsrepo.NotificationRepositoryFacade = (*PgxNotificationRepository)(nil)

func scanNotification(row rowScanner) (domain.Notification, error) {
	var n domain.Notification
	var typ, priority string
	err := row.Scan(
		&n.NotificationID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&typ,
		&priority,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
		&n.ExpiresAt,
	)
	n.Type = domain.NotificationType(typ)
	n.Priority = domain.NotificationPriority(priority)
	return n, err
}

func (r *PgxNotificationRepository) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE notification_id = $1;`
	n, err := scanNotification(r.pool.QueryRow(ctx, query, notificationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification %s: %w", notificationID, err)
	}
	return &n, nil
}

func (r *PgxNotificationRepository) FindNotificationsByUserID(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, notification_id DESC;
	`
	rows, err := r.pool.Query(ctx, query, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications of user %s: %w", userID, err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (r *PgxNotificationRepository) CountNotificationsByUserID(ctx context.Context, userID string) (int64, int64, error) {
	var total, unread int64
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = FALSE) FROM notifications WHERE user_id = $1;`
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("failed to count notifications of user %s: %w", userID, err)
	}
	return total, unread, nil
}

// SaveNotification is idempotent on the notification ID, so redelivered events are harmless.
func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (notification_id) DO NOTHING;
	`
	_, err := r.pool.Exec(ctx, query,
		n.NotificationID,
		n.UserID,
		n.Title,
		n.Message,
		string(n.Type),
		string(n.Priority),
		n.IsRead,
		n.ReadAt,
		n.CreatedAt,
		n.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notification %s: %w", n.NotificationID, err)
	}
	return nil
}

func (r *PgxNotificationRepository) MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $2)
		WHERE notification_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query, notificationID, readAt)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxNotificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $2
		WHERE user_id = $1 AND is_read = FALSE;
	`
	cmdTag, err := r.pool.Exec(ctx, query, userID, readAt)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications of user %s read: %w", userID, err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PgxNotificationRepository) DeleteNotification(ctx context.Context, notificationID string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE notification_id = $1;`, notificationID)
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", notificationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxNotificationRepository) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at < $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
