package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"untitledone/internal/config"
)

const (
	cleanupInterval = 1 * time.Hour

	ShareLinkRetention    = 30 * 24 * time.Hour
	NotificationRetention = 90 * 24 * time.Hour
)

type ExpiredShareLinkPurger interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReadNotificationPurger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionBackgroundService periodically deletes expired share links and
// old read notifications.
type RetentionBackgroundService struct {
	shareLinks    ExpiredShareLinkPurger
	notifications ReadNotificationPurger
	logger        *slog.Logger
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRetentionBackgroundService(
	shareLinks ExpiredShareLinkPurger,
	notifications ReadNotificationPurger,
	logger *slog.Logger,
) *RetentionBackgroundService {
	return &RetentionBackgroundService{
		shareLinks:    shareLinks,
		notifications: notifications,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *RetentionBackgroundService) WithClock(now func() time.Time) *RetentionBackgroundService {
	s.now = now
	return s
}

func (s *RetentionBackgroundService) StartWorkers() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.retentionWorker()

	s.logger.Info("Retention cleanup worker started", slog.Duration("interval", cleanupInterval))
}

func (s *RetentionBackgroundService) StopWorkers() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
}

// RunCleanup runs both purges once. A failing purge does not stop the other.
func (s *RetentionBackgroundService) RunCleanup(ctx context.Context) error {
	now := s.now()
	var errs []error

	deletedLinks, err := s.shareLinks.DeleteExpiredBefore(ctx, now.Add(-ShareLinkRetention))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete expired share links: %w", err))
	}

	deletedNotifications, err := s.notifications.DeleteReadBefore(ctx, now.Add(-NotificationRetention))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete read notifications: %w", err))
	}

	s.logger.Info("Retention cleanup completed",
		slog.Int64("deletedShareLinks", deletedLinks),
		slog.Int64("deletedNotifications", deletedNotifications))

	return errors.Join(errs...)
}

func (s *RetentionBackgroundService) retentionWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Retention cleanup worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Retention cleanup worker shutting down")
			return

		case <-ticker.C:
			if err := s.RunCleanup(s.ctx); err != nil {
				s.logger.Error("Error during retention cleanup", slog.String("error", err.Error()))
			}
		}
	}
}
