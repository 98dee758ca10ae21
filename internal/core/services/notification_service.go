package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultNotificationExchange is used when no exchange is configured.
const DefaultNotificationExchange = "ebank.notifications"

type notificationService struct {
	BaseService
	notificationRepo portsrepo.NotificationRepositoryFacade
	outboxRepo       portsrepo.OutboxRepository
	exchange         string
}

// NotificationServiceOption is a function that configures a notificationService
type NotificationServiceOption func(*notificationService)

// WithNotificationExchange sets the exchange recorded on outbox rows.
func WithNotificationExchange(exchange string) NotificationServiceOption {
	return func(s *notificationService) {
		if exchange != "" {
			s.exchange = exchange
		}
	}
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo portsrepo.NotificationRepositoryFacade, outboxRepo portsrepo.OutboxRepository, options ...NotificationServiceOption) portssvc.NotificationSvcFacade {
	s := &notificationService{
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		exchange:         DefaultNotificationExchange,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.NotificationSvcFacade = (*notificationService)(nil)

// Enqueue writes one outbox row per event inside tx.
func (s *notificationService) Enqueue(ctx context.Context, tx pgx.Tx, events ...domain.NotificationEvent) error {
	now := s.Now()
	var errs []error
	for _, event := range events {
		if event.UserID == "" {
			continue
		}
		if event.EventID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			event.EventID = id.String()
		}
		if event.OccurredAt.IsZero() {
			event.OccurredAt = now
		}
		payload, err := json.Marshal(event)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode event %s: %w", event.EventID, err))
			continue
		}
		if err := s.outboxRepo.EnqueueOutboxMessage(ctx, tx, event.EventID, s.exchange, event.RoutingKey(), payload); err != nil {
			errs = append(errs, fmt.Errorf("failed to enqueue event %s: %w", event.EventID, err))
			continue
		}
		s.LogDebug(ctx, "Notification event enqueued",
			slog.String("event_id", event.EventID),
			slog.String("user_id", event.UserID),
			slog.String("routing_key", event.RoutingKey()))
	}
	return errors.Join(errs...)
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.FindNotificationsByUserID(ctx, userID, unreadOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list notifications", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		return []domain.Notification{}, nil
	}
	return notifications, nil
}

func (s *notificationService) CountNotifications(ctx context.Context, userID string) (int64, int64, error) {
	total, unread, err := s.notificationRepo.CountNotificationsByUserID(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return total, unread, nil
}

func (s *notificationService) findOwned(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	n, err := s.notificationRepo.FindNotificationByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		s.LogWarn(ctx, "Notification belongs to another user",
			slog.String("user_id", userID),
			slog.String("notification_id", notificationID))
		return nil, apperrors.ErrAccessDenied
	}
	return n, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	n, err := s.findOwned(ctx, userID, notificationID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	now := s.Now()
	if err := s.notificationRepo.MarkNotificationRead(ctx, notificationID, now); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllNotificationsRead(ctx, userID, s.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	if _, err := s.findOwned(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.notificationRepo.DeleteNotification(ctx, notificationID)
}

// Deliver materializes an event in the inbox. The event ID is the notification ID, so redelivery is a no-op.
func (s *notificationService) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	if event.EventID == "" || event.UserID == "" {
		return fmt.Errorf("%w: notification event needs an ID and a user", apperrors.ErrValidation)
	}
	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = s.Now()
	}
	if err := s.notificationRepo.SaveNotification(ctx, event.ToNotification(createdAt)); err != nil {
		return fmt.Errorf("failed to store notification %s: %w", event.EventID, err)
	}
	return nil
}

func (s *notificationService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.notificationRepo.DeleteExpiredNotifications(ctx, s.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	if removed > 0 {
		s.LogInfo(ctx, "Expired notifications removed", slog.Int64("count", removed))
	}
	return removed, nil
}

// enqueueBestEffort records events and logs, never returns, a failure.
func enqueueBestEffort(ctx context.Context, base *BaseService, publisher portssvc.NotificationPublisherSvc, tx pgx.Tx, events ...domain.NotificationEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Enqueue(ctx, tx, events...); err != nil {
		base.LogError(ctx, err, "Failed to enqueue notifications", slog.Int("events", len(events)))
	}
}
