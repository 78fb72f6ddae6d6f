package notifications_testing

import (
	"io"
	"log/slog"

	notifications_services "untitledone/internal/features/notifications/services"
	projects_models "untitledone/internal/features/projects/models"
	users_models "untitledone/internal/features/users/models"
	users_testing "untitledone/internal/features/users/testing"

	"github.com/google/uuid"
)

const SiteOrigin = "https://app.test"

// Fixture wires the notification services to in-memory collaborators.
type Fixture struct {
	Mentions      *InMemoryMentionStore
	Notifications *InMemoryNotificationStore
	Preferences   *InMemoryPreferencesStore
	Users         *users_testing.InMemoryUserRepository
	Projects      ProjectMap
	Emails        *RecordingEmailSender
	Publisher     *RecordingPublisher
	DigestQueue   *InMemoryDigestQueue
	RunLock       *InMemoryRunLock
	Runner        *SyncRunner

	Writer  *notifications_services.NotificationWriter
	Service *notifications_services.NotificationService
	Digest  *notifications_services.DigestService
}

func NewFixture(users ...*users_models.User) *Fixture {
	fixture := &Fixture{
		Mentions:      NewInMemoryMentionStore(),
		Notifications: NewInMemoryNotificationStore(),
		Preferences:   NewInMemoryPreferencesStore(),
		Users:         users_testing.NewInMemoryUserRepository(users...),
		Projects:      ProjectMap{},
		Emails:        &RecordingEmailSender{},
		Publisher:     &RecordingPublisher{},
		DigestQueue:   &InMemoryDigestQueue{},
		RunLock:       &InMemoryRunLock{},
		Runner:        &SyncRunner{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fixture.Writer = notifications_services.NewNotificationWriter(
		fixture.Mentions,
		fixture.Notifications,
		fixture.Preferences,
		fixture.Users,
		fixture.Projects,
		fixture.Emails,
		fixture.Publisher,
		fixture.DigestQueue,
		fixture.Runner,
		SiteOrigin,
		logger,
	)
	fixture.Service = notifications_services.NewNotificationService(fixture.Notifications, fixture.Preferences)
	fixture.Digest = notifications_services.NewDigestService(
		fixture.DigestQueue,
		fixture.Notifications,
		fixture.Preferences,
		fixture.Users,
		fixture.Projects,
		fixture.Emails,
		SiteOrigin,
		logger,
	).WithRetryDelay(0).WithRunLock(fixture.RunLock)

	return fixture
}

func (f *Fixture) AddProject(name string, owner *users_models.User) *projects_models.Project {
	project := &projects_models.Project{ID: uuid.New(), Name: name, OwnerID: owner.ID}
	f.Projects[project.ID] = project

	return project
}
