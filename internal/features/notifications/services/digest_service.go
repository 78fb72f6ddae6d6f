package notifications_services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"untitledone/internal/features/email"
	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const (
	digestQueueKey         = "uo_digest:pending"
	digestDequeueBatchSize = 500
	digestSendConcurrency  = 4
	digestSendAttempts     = 3
	digestRunLockName      = "uo_digest:run"
	digestRunLockTTL       = 30 * time.Minute
)

// DigestEntry is one mention waiting for the recipient's daily email.
type DigestEntry struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	UserID         uuid.UUID  `json:"user_id"`
	ProjectID      uuid.UUID  `json:"project_id"`
	CommentID      uuid.UUID  `json:"comment_id"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	Excerpt        string     `json:"excerpt"`
	Context        string     `json:"context,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func newDigestEntry(
	notification *notifications_models.Notification,
	metadata notifications_models.NotificationMetadata,
) DigestEntry {
	entry := DigestEntry{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		ActorID:        notification.ActorID,
		Excerpt:        metadata.Excerpt,
		Context:        BuildAnchorContext(metadata),
		CreatedAt:      notification.CreatedAt,
	}
	if notification.ProjectID != nil {
		entry.ProjectID = *notification.ProjectID
	}
	if notification.CommentID != nil {
		entry.CommentID = *notification.CommentID
	}

	return entry
}

type QueueBackend interface {
	EnqueueBatch(ctx context.Context, queueKey string, items [][]byte) error
	DequeueBatch(ctx context.Context, queueKey string, maxCount int) ([][]byte, error)
}

// ValkeyDigestQueue keeps pending digest entries in a Valkey list shared by all instances.
type ValkeyDigestQueue struct {
	backend QueueBackend
	logger  *slog.Logger
}

func NewValkeyDigestQueue(backend QueueBackend, logger *slog.Logger) *ValkeyDigestQueue {
	return &ValkeyDigestQueue{backend: backend, logger: logger}
}

func (q *ValkeyDigestQueue) Enqueue(ctx context.Context, entries []DigestEntry) error {
	items := make([][]byte, 0, len(entries))
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode digest entry: %w", err)
		}

		items = append(items, data)
	}

	if len(items) == 0 {
		return nil
	}

	return q.backend.EnqueueBatch(ctx, digestQueueKey, items)
}

// Drain pops every pending entry. Malformed entries are logged and skipped.
func (q *ValkeyDigestQueue) Drain(ctx context.Context) ([]DigestEntry, error) {
	entries := make([]DigestEntry, 0)

	for {
		items, err := q.backend.DequeueBatch(ctx, digestQueueKey, digestDequeueBatchSize)
		if err != nil {
			return entries, fmt.Errorf("failed to dequeue digest entries: %w", err)
		}

		for _, item := range items {
			var entry DigestEntry
			if err := json.Unmarshal(item, &entry); err != nil {
				q.logger.Warn("skipping malformed digest entry", "error", err)
				continue
			}

			entries = append(entries, entry)
		}

		if len(items) < digestDequeueBatchSize {
			return entries, nil
		}
	}
}

// RunLock keeps a scheduled job to one instance per run.
type RunLock interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error)
}

type DigestSource interface {
	DigestQueue
	Drain(ctx context.Context) ([]DigestEntry, error)
}

// DigestService sends each user one email listing the mentions queued since
// the previous run that are still unread.
type DigestService struct {
	queue             DigestSource
	notificationStore NotificationStore
	preferencesStore  PreferencesStore
	userDirectory     UserDirectory
	projectLookup     ProjectLookup
	emailSender       DigestEmailSender
	siteOrigin        string
	logger            *slog.Logger

	runLock    RunLock
	retryDelay time.Duration
	runMu      sync.Mutex
	scheduler  *cron.Cron
}

func NewDigestService(
	queue DigestSource,
	notificationStore NotificationStore,
	preferencesStore PreferencesStore,
	userDirectory UserDirectory,
	projectLookup ProjectLookup,
	emailSender DigestEmailSender,
	siteOrigin string,
	logger *slog.Logger,
) *DigestService {
	return &DigestService{
		queue:             queue,
		notificationStore: notificationStore,
		preferencesStore:  preferencesStore,
		userDirectory:     userDirectory,
		projectLookup:     projectLookup,
		emailSender:       emailSender,
		siteOrigin:        siteOrigin,
		logger:            logger,
		retryDelay:        time.Second,
	}
}

// WithRunLock makes each run hold a cluster-wide lock, so instances sharing
// the queue never split one user's mentions across two emails.
func (s *DigestService) WithRunLock(lock RunLock) *DigestService {
	s.runLock = lock
	return s
}

func (s *DigestService) WithRetryDelay(delay time.Duration) *DigestService {
	s.retryDelay = delay
	return s
}

// Start schedules RunDigest with a six field cron expression (seconds first).
func (s *DigestService) Start(ctx context.Context, schedule string) error {
	scheduler := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))

	if _, err := scheduler.AddFunc(schedule, func() {
		if err := s.RunDigest(ctx); err != nil {
			s.logger.Error("digest run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}

	s.scheduler = scheduler
	scheduler.Start()

	s.logger.Info("digest scheduler started", "schedule", schedule)

	return nil
}

// Stop waits for a running digest to finish.
func (s *DigestService) Stop() {
	if s.scheduler == nil {
		return
	}

	<-s.scheduler.Stop().Done()
}

func (s *DigestService) RunDigest(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.runLock != nil {
		release, acquired, err := s.runLock.TryLock(ctx, digestRunLockName, digestRunLockTTL)
		if err != nil {
			return fmt.Errorf("failed to take digest run lock: %w", err)
		}
		if !acquired {
			s.logger.Info("digest run skipped, another instance holds the lock")
			return nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release digest run lock", "error", err)
			}
		}()
	}

	return s.runDigest(ctx)
}

func (s *DigestService) runDigest(ctx context.Context) error {
	entries, err := s.queue.Drain(ctx)
	if err != nil && len(entries) == 0 {
		return err
	}
	if err != nil {
		s.logger.Warn("digest drain stopped early", "error", err, "drained", len(entries))
	}
	if len(entries) == 0 {
		return nil
	}

	byUser := s.groupUnreadByUser(ctx, entries)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(digestSendConcurrency)

	for userID, userEntries := range byUser {
		userID, userEntries := userID, userEntries
		group.Go(func() error {
			s.sendUserDigest(groupCtx, userID, userEntries)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	s.logger.Info("digest run finished", "entries", len(entries), "users", len(byUser))

	return nil
}

func (s *DigestService) groupUnreadByUser(ctx context.Context, entries []DigestEntry) map[uuid.UUID][]DigestEntry {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.NotificationID)
	}

	unread := make(map[uuid.UUID]struct{}, len(ids))
	unreadIDs, err := s.notificationStore.FilterUnread(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to check read state, sending every queued mention", "error", err)
		unreadIDs = ids
	}
	for _, id := range unreadIDs {
		unread[id] = struct{}{}
	}

	byUser := make(map[uuid.UUID][]DigestEntry)
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for _, entry := range entries {
		if _, ok := unread[entry.NotificationID]; !ok {
			continue
		}
		if _, ok := seen[entry.NotificationID]; ok {
			continue
		}

		seen[entry.NotificationID] = struct{}{}
		byUser[entry.UserID] = append(byUser[entry.UserID], entry)
	}

	return byUser
}

func (s *DigestService) sendUserDigest(ctx context.Context, userID uuid.UUID, entries []DigestEntry) {
	preferences, err := s.preferencesStore.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load preferences for digest", "error", err, "userId", userID)
		s.requeue(ctx, entries)
		return
	}
	if preferences == nil {
		preferences = notifications_models.DefaultPreferences(userID)
	}

	if DecideDelivery(preferences) != notifications_enums.DeliveryDigest {
		return
	}

	data, recipientEmail, err := s.buildDigest(userID, entries)
	if err != nil {
		s.logger.Error("failed to build digest", "error", err, "userId", userID)
		s.requeue(ctx, entries)
		return
	}
	if data == nil {
		return
	}

	err = retry.Do(
		func() error {
			return s.emailSender.SendDigestEmail(ctx, recipientEmail, data)
		},
		retry.Attempts(digestSendAttempts),
		retry.Delay(s.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying digest email", "attempt", n+1, "error", err, "userId", userID)
		}),
	)
	if err != nil {
		s.logger.Error("failed to send digest email", "error", err, "userId", userID)
		s.requeue(ctx, entries)
	}
}

func (s *DigestService) buildDigest(userID uuid.UUID, entries []DigestEntry) (*email.DigestEmailData, string, error) {
	userIDs := []uuid.UUID{userID}
	for _, entry := range entries {
		if entry.ActorID != nil {
			userIDs = append(userIDs, *entry.ActorID)
		}
	}

	users, err := s.userDirectory.GetUsersByIDs(userIDs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load digest users: %w", err)
	}

	names := make(map[uuid.UUID]string, len(users))
	recipientEmail := ""
	recipientName := ""
	for _, user := range users {
		names[user.ID] = user.DisplayName()
		if user.ID == userID {
			recipientEmail = user.Email
			recipientName = user.DisplayName()
		}
	}
	if recipientEmail == "" {
		return nil, "", nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	projectNames := make(map[uuid.UUID]string)
	items := make([]email.DigestItem, 0, len(entries))
	for _, entry := range entries {
		projectName, ok := projectNames[entry.ProjectID]
		if !ok {
			project, err := s.projectLookup.GetProjectWithCache(entry.ProjectID)
			if err != nil {
				// project deleted since the mention
				projectNames[entry.ProjectID] = ""
				continue
			}

			projectName = project.Name
			projectNames[entry.ProjectID] = projectName
		}
		if projectName == "" {
			continue
		}

		commenterName := "Someone"
		if entry.ActorID != nil {
			if name, ok := names[*entry.ActorID]; ok {
				commenterName = name
			}
		}

		items = append(items, email.DigestItem{
			ProjectName:   projectName,
			CommenterName: commenterName,
			Excerpt:       entry.Excerpt,
			DeepLink:      BuildDeepLink(s.siteOrigin, entry.ProjectID, entry.CommentID),
			Context:       entry.Context,
		})
	}

	if len(items) == 0 {
		return nil, "", nil
	}

	return &email.DigestEmailData{RecipientName: recipientName, Items: items}, recipientEmail, nil
}

func (s *DigestService) requeue(ctx context.Context, entries []DigestEntry) {
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), entries); err != nil {
		s.logger.Error("failed to requeue digest entries", "error", err, "entries", len(entries))
	}
}
