package projects_testing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	audit_logs "untitledone/internal/features/audit_logs"
	projects_dto "untitledone/internal/features/projects/dto"
	projects_models "untitledone/internal/features/projects/models"
	projects_services "untitledone/internal/features/projects/services"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"
	users_testing "untitledone/internal/features/users/testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fixture wires project and membership services over in-memory stores.
type Fixture struct {
	Users       *users_testing.InMemoryUserRepository
	Projects    *InMemoryProjectStore
	Memberships *InMemoryMembershipStore
	AuditLog    *AuditLogRecorder

	ProjectService    *projects_services.ProjectService
	MembershipService *projects_services.MembershipService
}

func NewFixture(users ...*users_models.User) *Fixture {
	userRepository := users_testing.NewInMemoryUserRepository(users...)
	projectStore := &InMemoryProjectStore{projects: map[uuid.UUID]*projects_models.Project{}}
	membershipStore := &InMemoryMembershipStore{projects: projectStore, users: userRepository}
	auditLog := &AuditLogRecorder{}

	projectService := projects_services.NewProjectService(projectStore, membershipStore, auditLog, NewMapProjectCache())
	membershipService := projects_services.NewMembershipService(membershipStore, userRepository, auditLog, projectService)

	return &Fixture{
		Users:             userRepository,
		Projects:          projectStore,
		Memberships:       membershipStore,
		AuditLog:          auditLog,
		ProjectService:    projectService,
		MembershipService: membershipService,
	}
}

// CreateProject stores a project owned by owner plus the extra members with the given role.
func (f *Fixture) CreateProject(
	name string,
	owner *users_models.User,
	role users_enums.ProjectRole,
	members ...*users_models.User,
) *projects_models.Project {
	response, err := f.ProjectService.CreateProject(&projects_dto.CreateProjectRequestDTO{Name: name}, owner)
	if err != nil {
		panic(err)
	}

	for _, member := range members {
		if err := f.Memberships.CreateMembership(&projects_models.ProjectMembership{
			UserID:    member.ID,
			ProjectID: response.ID,
			Role:      role,
			AddedBy:   &owner.ID,
		}); err != nil {
			panic(err)
		}
	}

	project, _ := f.Projects.GetProjectByID(response.ID)
	return project
}

type InMemoryProjectStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*projects_models.Project
}

func (s *InMemoryProjectStore) CreateProject(project *projects_models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *project
	s.projects[project.ID] = &stored
	return nil
}

func (s *InMemoryProjectStore) GetProjectByID(projectID uuid.UUID) (*projects_models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, nil
	}

	result := *project
	return &result, nil
}

func (s *InMemoryProjectStore) UpdateProject(project *projects_models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *project
	s.projects[project.ID] = &stored
	return nil
}

func (s *InMemoryProjectStore) DeleteProject(projectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.projects, projectID)
	return nil
}

// InMemoryMembershipStore enforces the (user_id, project_id) unique key like the table does.
type InMemoryMembershipStore struct {
	mu          sync.RWMutex
	memberships []*projects_models.ProjectMembership
	projects    *InMemoryProjectStore
	users       *users_testing.InMemoryUserRepository

	// FailNextCreate makes the next CreateMembership return this error.
	FailNextCreate error
}

func (s *InMemoryMembershipStore) CreateMembership(membership *projects_models.ProjectMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextCreate != nil {
		err := s.FailNextCreate
		s.FailNextCreate = nil
		return err
	}

	for _, existing := range s.memberships {
		if existing.UserID == membership.UserID && existing.ProjectID == membership.ProjectID {
			return gorm.ErrDuplicatedKey
		}
	}

	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now().UTC()
	}

	stored := *membership
	s.memberships = append(s.memberships, &stored)
	return nil
}

func (s *InMemoryMembershipStore) GetMembershipByUserAndProject(
	userID, projectID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, membership := range s.memberships {
		if membership.UserID == userID && membership.ProjectID == projectID {
			result := *membership
			return &result, nil
		}
	}

	return nil, nil
}

func (s *InMemoryMembershipStore) GetProjectMembers(projectID uuid.UUID) ([]*projects_dto.ProjectMemberResponseDTO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := []*projects_dto.ProjectMemberResponseDTO{}
	for _, membership := range s.memberships {
		if membership.ProjectID != projectID {
			continue
		}

		user, _ := s.users.GetUserByID(membership.UserID)
		if user == nil {
			continue
		}

		members = append(members, &projects_dto.ProjectMemberResponseDTO{
			ID:        membership.ID,
			UserID:    user.ID,
			Username:  user.Username,
			Name:      user.Name,
			Email:     user.Email,
			Role:      membership.Role,
			CreatedAt: membership.CreatedAt,
		})
	}

	return members, nil
}

func (s *InMemoryMembershipStore) UpdateMemberRole(userID, projectID uuid.UUID, role users_enums.ProjectRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, membership := range s.memberships {
		if membership.UserID == userID && membership.ProjectID == projectID {
			membership.Role = role
		}
	}

	return nil
}

func (s *InMemoryMembershipStore) RemoveMember(userID, projectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.memberships[:0]
	for _, membership := range s.memberships {
		if membership.UserID != userID || membership.ProjectID != projectID {
			kept = append(kept, membership)
		}
	}
	s.memberships = kept

	return nil
}

func (s *InMemoryMembershipStore) GetUserProjectRole(projectID, userID uuid.UUID) (*users_enums.ProjectRole, error) {
	membership, _ := s.GetMembershipByUserAndProject(userID, projectID)
	if membership == nil {
		return nil, nil
	}

	return &membership.Role, nil
}

func (s *InMemoryMembershipStore) GetProjectsWithRolesByUserID(
	userRole users_enums.UserRole,
	userID uuid.UUID,
) ([]projects_dto.ProjectResponseDTO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := []projects_dto.ProjectResponseDTO{}
	for _, membership := range s.memberships {
		if membership.UserID != userID {
			continue
		}

		project, _ := s.projects.GetProjectByID(membership.ProjectID)
		if project == nil {
			continue
		}

		role := membership.Role
		projects = append(projects, projects_dto.ProjectResponseDTO{
			ID:        project.ID,
			Name:      project.Name,
			OwnerID:   project.OwnerID,
			CreatedAt: project.CreatedAt,
			UserRole:  &role,
		})
	}

	return projects, nil
}

func (s *InMemoryMembershipStore) FilterMemberUserIDs(projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	project, _ := s.projects.GetProjectByID(projectID)

	result := []uuid.UUID{}
	for _, userID := range userIDs {
		if project != nil && project.IsOwnedBy(userID) {
			result = append(result, userID)
			continue
		}

		if membership, _ := s.GetMembershipByUserAndProject(userID, projectID); membership != nil {
			result = append(result, userID)
		}
	}

	return result, nil
}

func (s *InMemoryMembershipStore) SearchMembersByUsernamePrefix(
	projectID uuid.UUID,
	prefix string,
	limit int,
) ([]projects_dto.MemberSuggestionDTO, error) {
	members, _ := s.GetProjectMembers(projectID)

	suggestions := []projects_dto.MemberSuggestionDTO{}
	for _, member := range members {
		if strings.HasPrefix(strings.ToLower(member.Username), strings.ToLower(prefix)) {
			suggestions = append(suggestions, projects_dto.MemberSuggestionDTO{ID: member.UserID, Username: member.Username})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return strings.ToLower(suggestions[i].Username) < strings.ToLower(suggestions[j].Username)
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return suggestions, nil
}

type MapProjectCache struct {
	mu    sync.Mutex
	items map[string]projects_models.Project
}

func NewMapProjectCache() *MapProjectCache {
	return &MapProjectCache{items: map[string]projects_models.Project{}}
}

func (c *MapProjectCache) Get(_ context.Context, key string) *projects_models.Project {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil
	}

	return &item
}

func (c *MapProjectCache) Set(_ context.Context, key string, item *projects_models.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = *item
}

func (c *MapProjectCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// AuditLogRecorder keeps written messages per project.
type AuditLogRecorder struct {
	users_testing.RecordingAuditLogWriter
}

func (r *AuditLogRecorder) GetProjectAuditLogs(
	projectID uuid.UUID,
	request *audit_logs.GetAuditLogsRequest,
) (*audit_logs.GetAuditLogsResponse, error) {
	messages := r.Snapshot()

	entries := make([]*audit_logs.AuditLogEntryDTO, 0, len(messages))
	for _, message := range messages {
		entries = append(entries, &audit_logs.AuditLogEntryDTO{ID: uuid.New(), ProjectID: &projectID, Message: message})
	}

	return &audit_logs.GetAuditLogsResponse{
		AuditLogs: entries,
		Limit:     request.Limit,
	}, nil
}
