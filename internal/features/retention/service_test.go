package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPurger struct {
	cutoffs []time.Time
	deleted int64
	err     error
}

func (p *recordingPurger) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.deleted, p.err
}

func (p *recordingPurger) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.deleted, p.err
}

func Test_RunCleanup_UsesRetentionWindows(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	links := &recordingPurger{deleted: 4}
	notifications := &recordingPurger{deleted: 7}
	service := createRetentionService(links, notifications).WithClock(func() time.Time { return now })

	require.NoError(t, service.RunCleanup(context.Background()))

	require.Len(t, links.cutoffs, 1)
	assert.Equal(t, now.Add(-30*24*time.Hour), links.cutoffs[0])
	require.Len(t, notifications.cutoffs, 1)
	assert.Equal(t, now.Add(-90*24*time.Hour), notifications.cutoffs[0])
}

func Test_RunCleanup_WhenSharePurgeFails_StillPurgesNotifications(t *testing.T) {
	links := &recordingPurger{err: errors.New("statement timeout")}
	notifications := &recordingPurger{}
	service := createRetentionService(links, notifications)

	err := service.RunCleanup(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete expired share links")
	assert.Len(t, notifications.cutoffs, 1)
}

func Test_StopWorkers_WithoutStart_ReturnsImmediately(t *testing.T) {
	service := createRetentionService(&recordingPurger{}, &recordingPurger{})

	service.StopWorkers()
}

func Test_StopWorkers_AfterStart_StopsWorker(t *testing.T) {
	service := createRetentionService(&recordingPurger{}, &recordingPurger{})

	service.StartWorkers()
	service.StopWorkers()
}

func createRetentionService(links ExpiredShareLinkPurger, notifications ReadNotificationPurger) *RetentionBackgroundService {
	return NewRetentionBackgroundService(links, notifications, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
