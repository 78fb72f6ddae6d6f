package comments_testing

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	comments_models "untitledone/internal/features/comments/models"
	comments_services "untitledone/internal/features/comments/services"
	"untitledone/internal/features/mentions"
	notifications_testing "untitledone/internal/features/notifications/testing"
	projects_models "untitledone/internal/features/projects/models"
	projects_services "untitledone/internal/features/projects/services"
	projects_testing "untitledone/internal/features/projects/testing"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

// Fixture runs the comment service against real project, mention and
// notification services backed by in-memory stores.
type Fixture struct {
	Projects      *projects_testing.Fixture
	Notifications *notifications_testing.Fixture
	Comments      *InMemoryCommentStore

	CommentService *comments_services.CommentService
}

func NewFixture(users ...*users_models.User) *Fixture {
	projectsFixture := projects_testing.NewFixture(users...)
	notificationsFixture := notifications_testing.NewFixture(users...)
	commentStore := NewInMemoryCommentStore()

	validator := mentions.NewMentionValidator(
		projectsFixture.Users,
		projectsFixture.ProjectService,
		projects_services.ErrProjectNotFound,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return &Fixture{
		Projects:      projectsFixture,
		Notifications: notificationsFixture,
		Comments:      commentStore,
		CommentService: comments_services.NewCommentService(
			commentStore,
			projectsFixture.ProjectService,
			validator,
			notificationsFixture.Writer,
			projectsFixture.Users,
		),
	}
}

func (f *Fixture) CreateProject(
	name string,
	owner *users_models.User,
	role users_enums.ProjectRole,
	members ...*users_models.User,
) *projects_models.Project {
	project := f.Projects.CreateProject(name, owner, role, members...)
	f.Notifications.Projects[project.ID] = project

	return project
}

type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[uuid.UUID]*comments_models.Comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[uuid.UUID]*comments_models.Comment)}
}

func (s *InMemoryCommentStore) CreateComment(_ context.Context, comment *comments_models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	stored := *comment
	s.comments[comment.ID] = &stored

	return nil
}

func (s *InMemoryCommentStore) GetCommentByID(_ context.Context, commentID uuid.UUID) (*comments_models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[commentID]
	if !ok {
		return nil, nil
	}

	copied := *comment
	return &copied, nil
}

func (s *InMemoryCommentStore) GetProjectComments(
	_ context.Context,
	projectID uuid.UUID,
) ([]*comments_models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*comments_models.Comment, 0)
	for _, comment := range s.comments {
		if comment.ProjectID == projectID {
			copied := *comment
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (s *InMemoryCommentStore) UpdateCommentBody(_ context.Context, commentID uuid.UUID, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment, ok := s.comments[commentID]; ok {
		comment.Body = body
		comment.UpdatedAt = time.Now().UTC()
	}

	return nil
}

func (s *InMemoryCommentStore) SetResolved(_ context.Context, commentID uuid.UUID, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment, ok := s.comments[commentID]; ok {
		comment.Resolved = resolved
		comment.UpdatedAt = time.Now().UTC()
	}

	return nil
}

// DeleteComment also drops replies, like the foreign key cascade does.
func (s *InMemoryCommentStore) DeleteComment(_ context.Context, commentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.comments, commentID)
	for id, comment := range s.comments {
		if comment.ParentID != nil && *comment.ParentID == commentID {
			delete(s.comments, id)
		}
	}

	return nil
}

func (s *InMemoryCommentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments)
}
