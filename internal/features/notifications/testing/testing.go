package notifications_testing

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"untitledone/internal/features/email"
	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	notifications_repositories "untitledone/internal/features/notifications/repositories"
	notifications_services "untitledone/internal/features/notifications/services"
	projects_models "untitledone/internal/features/projects/models"

	"github.com/google/uuid"
)

var ErrProjectMissing = errors.New("project not found")

// InMemoryMentionStore enforces one mention per (comment, user) like the mentions table does.
type InMemoryMentionStore struct {
	mu       sync.Mutex
	mentions map[uuid.UUID]map[uuid.UUID]struct{}
	FailWith error
}

func NewInMemoryMentionStore() *InMemoryMentionStore {
	return &InMemoryMentionStore{mentions: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

func (s *InMemoryMentionStore) InsertMentions(
	_ context.Context,
	commentID uuid.UUID,
	userIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	existing, ok := s.mentions[commentID]
	if !ok {
		existing = make(map[uuid.UUID]struct{})
		s.mentions[commentID] = existing
	}

	inserted := make([]uuid.UUID, 0, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := existing[userID]; ok {
			continue
		}

		existing[userID] = struct{}{}
		inserted = append(inserted, userID)
	}

	return inserted, nil
}

func (s *InMemoryMentionStore) GetMentionedUserIDs(_ context.Context, commentID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userIDs := make([]uuid.UUID, 0, len(s.mentions[commentID]))
	for userID := range s.mentions[commentID] {
		userIDs = append(userIDs, userID)
	}

	return userIDs, nil
}

type InMemoryNotificationStore struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*notifications_models.Notification
	FailCreate    error
}

func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{notifications: make(map[uuid.UUID]*notifications_models.Notification)}
}

func (s *InMemoryNotificationStore) CreateNotifications(
	_ context.Context,
	notifications []*notifications_models.Notification,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		return s.FailCreate
	}

	for _, notification := range notifications {
		if notification.ID == uuid.Nil {
			notification.ID = uuid.New()
		}
		if notification.CreatedAt.IsZero() {
			notification.CreatedAt = time.Now().UTC()
		}

		stored := *notification
		s.notifications[notification.ID] = &stored
	}

	return nil
}

func (s *InMemoryNotificationStore) ListNotifications(
	_ context.Context,
	query notifications_repositories.ListQuery,
) ([]*notifications_models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*notifications_models.Notification, 0)
	for _, notification := range s.visible(query.UserID, query.ExcludeTypes) {
		switch query.Filter {
		case notifications_enums.NotificationFilterUnread:
			if notification.IsRead {
				continue
			}
		case notifications_enums.NotificationFilterRead:
			if !notification.IsRead {
				continue
			}
		}

		if query.Cursor != nil && !isBefore(notification, query.Cursor) {
			continue
		}

		copied := *notification
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return isBefore(result[j], &notifications_models.NotificationCursor{
			CreatedAt: result[i].CreatedAt,
			ID:        result[i].ID,
		})
	})

	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}

	return result, nil
}

func (s *InMemoryNotificationStore) CountUnread(
	_ context.Context,
	userID uuid.UUID,
	excludeTypes []notifications_enums.NotificationType,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, notification := range s.visible(userID, excludeTypes) {
		if !notification.IsRead {
			count++
		}
	}

	return count, nil
}

func (s *InMemoryNotificationStore) MarkRead(
	_ context.Context,
	notificationID uuid.UUID,
	userID uuid.UUID,
	isRead bool,
) (*notifications_models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[notificationID]
	if !ok || notification.UserID != userID {
		return nil, nil
	}

	notification.IsRead = isRead
	notification.UpdatedAt = time.Now().UTC()

	copied := *notification
	return &copied, nil
}

func (s *InMemoryNotificationStore) MarkAllRead(
	_ context.Context,
	userID uuid.UUID,
	excludeTypes []notifications_enums.NotificationType,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, notification := range s.visible(userID, excludeTypes) {
		if !notification.IsRead {
			notification.IsRead = true
			count++
		}
	}

	return count, nil
}

func (s *InMemoryNotificationStore) FilterUnread(_ context.Context, notificationIDs []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unread := make([]uuid.UUID, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		if notification, ok := s.notifications[id]; ok && !notification.IsRead {
			unread = append(unread, id)
		}
	}

	return unread, nil
}

// ForUser returns the stored notifications of a user in no particular order.
func (s *InMemoryNotificationStore) ForUser(userID uuid.UUID) []*notifications_models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.visible(userID, nil)
}

func (s *InMemoryNotificationStore) All() []*notifications_models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*notifications_models.Notification, 0, len(s.notifications))
	for _, notification := range s.notifications {
		result = append(result, notification)
	}

	return result
}

func (s *InMemoryNotificationStore) visible(
	userID uuid.UUID,
	excludeTypes []notifications_enums.NotificationType,
) []*notifications_models.Notification {
	result := make([]*notifications_models.Notification, 0)

	for _, notification := range s.notifications {
		if notification.UserID != userID {
			continue
		}

		excluded := false
		for _, excludedType := range excludeTypes {
			if notification.Type == excludedType {
				excluded = true
			}
		}
		if !excluded {
			result = append(result, notification)
		}
	}

	return result
}

// isBefore reports whether n sorts after the cursor in (created_at, id) descending order.
func isBefore(n *notifications_models.Notification, cursor *notifications_models.NotificationCursor) bool {
	if !n.CreatedAt.Equal(cursor.CreatedAt) {
		return n.CreatedAt.Before(cursor.CreatedAt)
	}

	return bytes.Compare(n.ID[:], cursor.ID[:]) < 0
}

type InMemoryPreferencesStore struct {
	mu          sync.Mutex
	preferences map[uuid.UUID]*notifications_models.NotificationPreferences
}

func NewInMemoryPreferencesStore() *InMemoryPreferencesStore {
	return &InMemoryPreferencesStore{preferences: make(map[uuid.UUID]*notifications_models.NotificationPreferences)}
}

func (s *InMemoryPreferencesStore) GetPreferences(
	_ context.Context,
	userID uuid.UUID,
) (*notifications_models.NotificationPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preferences, ok := s.preferences[userID]
	if !ok {
		return nil, nil
	}

	copied := *preferences
	return &copied, nil
}

func (s *InMemoryPreferencesStore) UpsertPreferences(
	_ context.Context,
	preferences *notifications_models.NotificationPreferences,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *preferences
	s.preferences[preferences.UserID] = &copied

	return nil
}

func (s *InMemoryPreferencesStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.preferences)
}

// ProjectMap resolves projects by id and fails for everything else.
type ProjectMap map[uuid.UUID]*projects_models.Project

func (m ProjectMap) GetProjectWithCache(projectID uuid.UUID) (*projects_models.Project, error) {
	project, ok := m[projectID]
	if !ok {
		return nil, ErrProjectMissing
	}

	return project, nil
}

// SyncRunner runs every task inline, so delivery has happened when Submit returns.
type SyncRunner struct {
	mu     sync.Mutex
	Errors []error
}

func (r *SyncRunner) Submit(_ string, fn func(ctx context.Context) error) bool {
	err := fn(context.Background())

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Errors = append(r.Errors, err)
	}

	return true
}

type SentMentionEmail struct {
	To   string
	Data *email.MentionEmailData
}

type SentDigestEmail struct {
	To   string
	Data *email.DigestEmailData
}

// RecordingEmailSender records emails. The first FailTimes digest sends fail.
type RecordingEmailSender struct {
	mu            sync.Mutex
	MentionEmails []SentMentionEmail
	DigestEmails  []SentDigestEmail
	DigestCalls   int
	FailTimes     int
}

func (s *RecordingEmailSender) SendMentionEmail(_ context.Context, to string, data *email.MentionEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MentionEmails = append(s.MentionEmails, SentMentionEmail{To: to, Data: data})
	return nil
}

func (s *RecordingEmailSender) SendDigestEmail(_ context.Context, to string, data *email.DigestEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DigestCalls++
	if s.DigestCalls <= s.FailTimes {
		return errors.New("smtp unavailable")
	}

	s.DigestEmails = append(s.DigestEmails, SentDigestEmail{To: to, Data: data})
	return nil
}

type PublishedNotification struct {
	UserID       uuid.UUID
	Notification any
}

type RecordingPublisher struct {
	mu        sync.Mutex
	Published []PublishedNotification
}

func (p *RecordingPublisher) PublishNotification(_ context.Context, userID uuid.UUID, notification any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Published = append(p.Published, PublishedNotification{UserID: userID, Notification: notification})
	return nil
}

func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.Published)
}

type InMemoryDigestQueue struct {
	mu      sync.Mutex
	entries []notifications_services.DigestEntry
}

func (q *InMemoryDigestQueue) Enqueue(_ context.Context, entries []notifications_services.DigestEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entries...)
	return nil
}

func (q *InMemoryDigestQueue) Drain(_ context.Context) ([]notifications_services.DigestEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.entries
	q.entries = nil

	return drained, nil
}

func (q *InMemoryDigestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// InMemoryRunLock mimics a shared lock. HeldByOther simulates another
// instance owning it.
type InMemoryRunLock struct {
	mu          sync.Mutex
	held        map[string]bool
	HeldByOther bool
	Err         error
	Acquired    int
}

func (l *InMemoryRunLock) TryLock(_ context.Context, name string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Err != nil {
		return nil, false, l.Err
	}
	if l.HeldByOther || l.held[name] {
		return nil, false, nil
	}

	if l.held == nil {
		l.held = make(map[string]bool)
	}
	l.held[name] = true
	l.Acquired++

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.held, name)
		return nil
	}, true, nil
}

func (l *InMemoryRunLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.held) > 0
}
