package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/adapters/messaging/rabbitmq"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
)

const (
	defaultBatchSize       = 50
	defaultPollInterval    = 1200 * time.Millisecond
	defaultStaleProcessing = 2 * time.Minute
	maxRetryDelaySeconds   = 300
)

// OutboxDispatcher moves notification events from the outbox to the inbox
// table and the message broker.
type OutboxDispatcher struct {
	repo                portsrepo.OutboxRepository
	delivery            portssvc.NotificationDeliverySvc
	publisher           rabbitmq.Publisher
	batchSize           int
	pollInterval        time.Duration
	staleProcessingTime time.Duration
	logger              *slog.Logger
}

// DispatcherOption configures an OutboxDispatcher.
type DispatcherOption func(*OutboxDispatcher)

func WithBatchSize(n int) DispatcherOption {
	return func(d *OutboxDispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

func WithPollInterval(interval time.Duration) DispatcherOption {
	return func(d *OutboxDispatcher) {
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}

func WithStaleProcessingTime(stale time.Duration) DispatcherOption {
	return func(d *OutboxDispatcher) {
		if stale > 0 {
			d.staleProcessingTime = stale
		}
	}
}

func NewOutboxDispatcher(repo portsrepo.OutboxRepository, delivery portssvc.NotificationDeliverySvc, publisher rabbitmq.Publisher, logger *slog.Logger, opts ...DispatcherOption) *OutboxDispatcher {
	if publisher == nil {
		publisher = &rabbitmq.FallbackPublisher{Logger: logger}
	}
	d := &OutboxDispatcher{
		repo:                repo,
		delivery:            delivery,
		publisher:           publisher,
		batchSize:           defaultBatchSize,
		pollInterval:        defaultPollInterval,
		staleProcessingTime: defaultStaleProcessing,
		logger:              logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run polls until ctx is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.logger.Info("Outbox dispatcher started", slog.Duration("poll_interval", d.pollInterval), slog.Int("batch_size", d.batchSize))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.FlushOnce(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("Outbox flush error", slog.String("error", err.Error()))
			}
		}
	}
}

// FlushOnce handles one claimed batch and returns how many messages were published.
func (d *OutboxDispatcher) FlushOnce(ctx context.Context) (int, error) {
	staleAfterSeconds := int(d.staleProcessingTime.Seconds())
	messages, err := d.repo.ClaimOutboxMessages(ctx, d.batchSize, staleAfterSeconds)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, message := range messages {
		if err := d.dispatch(ctx, message); err != nil {
			retryAfter := retryDelaySeconds(message.Attempts)
			d.logger.Warn("Outbox message delivery failed",
				slog.Int64("outbox_id", message.ID),
				slog.String("event_id", message.EventID),
				slog.Int("attempts", message.Attempts),
				slog.Int("retry_after_seconds", retryAfter),
				slog.String("error", err.Error()))
			if markErr := d.repo.MarkOutboxFailed(ctx, message.ID, retryAfter, err.Error()); markErr != nil {
				d.logger.Error("Failed to reschedule outbox message", slog.Int64("outbox_id", message.ID), slog.String("error", markErr.Error()))
			}
			continue
		}
		if err := d.repo.MarkOutboxPublished(ctx, message.ID); err != nil {
			d.logger.Error("Failed to mark outbox message as published", slog.Int64("outbox_id", message.ID), slog.String("error", err.Error()))
			continue
		}
		published++
	}
	return published, nil
}

// dispatch stores the inbox entry first so a broker outage never loses it.
// Both steps are idempotent on the event ID.
func (d *OutboxDispatcher) dispatch(ctx context.Context, message domain.OutboxMessage) error {
	var event domain.NotificationEvent
	if err := json.Unmarshal(message.Payload, &event); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := d.delivery.Deliver(ctx, event); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if err := d.publisher.Publish(ctx, message.Exchange, message.RoutingKey, message.Payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// retryDelaySeconds is min(2^attempt, 300).
func retryDelaySeconds(attempt int) int {
	if attempt < 1 {
		return 1
	}
	if attempt >= 9 {
		return maxRetryDelaySeconds
	}
	return min(1<<attempt, maxRetryDelaySeconds)
}
