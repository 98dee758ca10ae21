package jobs

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
)

const jobTimeout = 30 * time.Second

// Jobs contains the periodic maintenance tasks.
type Jobs struct {
	notifications portssvc.NotificationDeliverySvc
	rates         portssvc.RateSvc
	logger        *slog.Logger
}

func NewJobs(notifications portssvc.NotificationDeliverySvc, rates portssvc.RateSvc, logger *slog.Logger) *Jobs {
	return &Jobs{notifications: notifications, rates: rates, logger: logger}
}

// CleanupExpiredNotifications deletes notifications past their expiry.
func (j *Jobs) CleanupExpiredNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := j.notifications.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("failed to clean up expired notifications", "error", err)
		return
	}
	j.logger.Info("notification cleanup finished", "removed", removed)
}

// WarmupRates queries the live provider so the rate cache stays hot.
func (j *Jobs) WarmupRates() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := j.rates.Warmup(ctx); err != nil {
		j.logger.Warn("rate warmup incomplete", "error", err)
		return
	}
	j.logger.Debug("rate warmup finished")
}
