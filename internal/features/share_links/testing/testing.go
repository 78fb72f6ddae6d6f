package share_links_testing

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	projects_testing "untitledone/internal/features/projects/testing"
	share_links_models "untitledone/internal/features/share_links/models"
	share_links_services "untitledone/internal/features/share_links/services"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

const SiteOrigin = "https://app.test"

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type Fixture struct {
	Projects *projects_testing.Fixture
	Links    *InMemoryShareLinkStore
	Clock    *Clock
	Service  *share_links_services.ShareLinkService
}

func NewFixture(users ...*users_models.User) *Fixture {
	projectsFixture := projects_testing.NewFixture(users...)
	store := NewInMemoryShareLinkStore()
	clock := NewClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))

	service := share_links_services.NewShareLinkService(
		store,
		projectsFixture.ProjectService,
		projectsFixture.MembershipService,
		projectsFixture.AuditLog,
		SiteOrigin,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).WithClock(clock.Now)

	return &Fixture{
		Projects: projectsFixture,
		Links:    store,
		Clock:    clock,
		Service:  service,
	}
}

// InMemoryShareLinkStore serialises claims under one mutex, matching the
// conditional UPDATE of the real store.
type InMemoryShareLinkStore struct {
	mu    sync.Mutex
	links map[uuid.UUID]*share_links_models.ShareLink

	FailClaim error
}

func NewInMemoryShareLinkStore() *InMemoryShareLinkStore {
	return &InMemoryShareLinkStore{links: make(map[uuid.UUID]*share_links_models.ShareLink)}
}

func (s *InMemoryShareLinkStore) CreateShareLink(_ context.Context, link *share_links_models.ShareLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	stored := *link
	s.links[link.ID] = &stored

	return nil
}

func (s *InMemoryShareLinkStore) CountActiveLinks(_ context.Context, projectID uuid.UUID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, link := range s.links {
		if link.ProjectID == projectID && !link.Revoked && link.UsedBy == nil && link.ExpiresAt.After(now) {
			count++
		}
	}

	return count, nil
}

func (s *InMemoryShareLinkStore) GetShareLinkByToken(_ context.Context, token string) (*share_links_models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range s.links {
		if link.Token == token {
			copied := *link
			return &copied, nil
		}
	}

	return nil, nil
}

func (s *InMemoryShareLinkStore) GetShareLinkByID(_ context.Context, linkID uuid.UUID) (*share_links_models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[linkID]
	if !ok {
		return nil, nil
	}

	copied := *link
	return &copied, nil
}

func (s *InMemoryShareLinkStore) GetProjectShareLinks(
	_ context.Context,
	projectID uuid.UUID,
) ([]*share_links_models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*share_links_models.ShareLink, 0)
	for _, link := range s.links {
		if link.ProjectID == projectID {
			copied := *link
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *InMemoryShareLinkStore) RevokeShareLink(_ context.Context, linkID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link, ok := s.links[linkID]; ok {
		link.Revoked = true
	}

	return nil
}

func (s *InMemoryShareLinkStore) ClaimShareLink(
	_ context.Context,
	linkID uuid.UUID,
	userID uuid.UUID,
	now time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailClaim != nil {
		return false, s.FailClaim
	}

	link, ok := s.links[linkID]
	if !ok || link.UsedBy != nil || link.Revoked {
		return false, nil
	}

	usedBy := userID
	usedAt := now
	link.UsedBy = &usedBy
	link.UsedAt = &usedAt

	return true, nil
}

func (s *InMemoryShareLinkStore) ReleaseShareLink(_ context.Context, linkID uuid.UUID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link, ok := s.links[linkID]; ok && link.UsedBy != nil && *link.UsedBy == userID {
		link.UsedBy = nil
		link.UsedAt = nil
	}

	return nil
}

// Update lets tests put a link into an arbitrary state.
func (s *InMemoryShareLinkStore) Update(linkID uuid.UUID, update func(link *share_links_models.ShareLink)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link, ok := s.links[linkID]; ok {
		update(link)
	}
}
