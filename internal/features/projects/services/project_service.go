package projects_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	audit_logs "untitledone/internal/features/audit_logs"
	projects_dto "untitledone/internal/features/projects/dto"
	projects_interfaces "untitledone/internal/features/projects/interfaces"
	projects_models "untitledone/internal/features/projects/models"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"
	"untitledone/internal/util/validation"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectAccessDenied   = errors.New("insufficient permissions to view project")
	ErrProjectManageDenied   = errors.New("insufficient permissions to update project")
	ErrOnlyOwnerCanDelete    = errors.New("only project owner or admin can delete project")
	ErrInvalidMentionQuery   = errors.New("query must be 1-32 characters of letters, digits, '_' or '-'")
	ErrAuditLogsAccessDenied = errors.New("insufficient permissions to view project audit logs")
)

const autocompleteLimit = 5

type ProjectCache interface {
	Get(ctx context.Context, key string) *projects_models.Project
	Set(ctx context.Context, key string, item *projects_models.Project)
	Invalidate(ctx context.Context, key string)
}

type AuditLogService interface {
	projects_interfaces.AuditLogWriter
	GetProjectAuditLogs(
		projectID uuid.UUID,
		request *audit_logs.GetAuditLogsRequest,
	) (*audit_logs.GetAuditLogsResponse, error)
}

type ProjectService struct {
	projectRepository    projects_interfaces.ProjectStore
	membershipRepository projects_interfaces.MembershipStore
	auditLogService      AuditLogService

	projectCache ProjectCache
	singleflight singleflight.Group // Prevents thundering herd on DB calls
}

func NewProjectService(
	projectRepository projects_interfaces.ProjectStore,
	membershipRepository projects_interfaces.MembershipStore,
	auditLogService AuditLogService,
	projectCache ProjectCache,
) *ProjectService {
	return &ProjectService{
		projectRepository:    projectRepository,
		membershipRepository: membershipRepository,
		auditLogService:      auditLogService,
		projectCache:         projectCache,
	}
}

func (s *ProjectService) CreateProject(
	request *projects_dto.CreateProjectRequestDTO,
	creator *users_models.User,
) (*projects_dto.ProjectResponseDTO, error) {
	project := &projects_models.Project{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(request.Name),
		OwnerID:   creator.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.projectRepository.CreateProject(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	membership := projects_models.NewProjectMembership(project.ID, creator.ID, users_enums.ProjectRoleOwner, nil)

	if err := s.membershipRepository.CreateMembership(membership); err != nil {
		return nil, fmt.Errorf("failed to create project membership: %w", err)
	}

	// Pre-warm cache with new project for immediate availability
	s.projectCache.Set(context.Background(), project.ID.String(), project)

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("Project created: %s", project.Name),
		&creator.ID,
		&project.ID,
	)

	ownerRole := users_enums.ProjectRoleOwner
	return &projects_dto.ProjectResponseDTO{
		ID:        project.ID,
		Name:      project.Name,
		OwnerID:   project.OwnerID,
		CreatedAt: project.CreatedAt,
		UserRole:  &ownerRole,
	}, nil
}

func (s *ProjectService) GetProject(projectID uuid.UUID, user *users_models.User) (*projects_dto.ProjectResponseDTO, error) {
	project, err := s.GetProjectWithCache(projectID)
	if err != nil {
		return nil, err
	}

	canAccess, role, err := s.CanUserAccessProject(projectID, user)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrProjectAccessDenied
	}

	return &projects_dto.ProjectResponseDTO{
		ID:        project.ID,
		Name:      project.Name,
		OwnerID:   project.OwnerID,
		CreatedAt: project.CreatedAt,
		UserRole:  role,
	}, nil
}

func (s *ProjectService) GetUserProjects(user *users_models.User) (*projects_dto.ListProjectsResponseDTO, error) {
	projects, err := s.membershipRepository.GetProjectsWithRolesByUserID(user.Role, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user projects: %w", err)
	}

	return &projects_dto.ListProjectsResponseDTO{
		Projects: projects,
	}, nil
}

func (s *ProjectService) UpdateProject(
	projectID uuid.UUID,
	request *projects_dto.UpdateProjectRequestDTO,
	user *users_models.User,
) (*projects_dto.ProjectResponseDTO, error) {
	project, err := s.GetProjectWithCache(projectID)
	if err != nil {
		return nil, err
	}

	canManage, err := s.CanUserManageProject(projectID, user)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, ErrProjectManageDenied
	}

	updated := *project
	updated.Name = strings.TrimSpace(request.Name)

	if err := s.projectRepository.UpdateProject(&updated); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.projectCache.Invalidate(context.Background(), projectID.String())

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("Project renamed from %s to %s", project.Name, updated.Name),
		&user.ID,
		&projectID,
	)

	return &projects_dto.ProjectResponseDTO{
		ID:        updated.ID,
		Name:      updated.Name,
		OwnerID:   updated.OwnerID,
		CreatedAt: updated.CreatedAt,
	}, nil
}

func (s *ProjectService) DeleteProject(projectID uuid.UUID, user *users_models.User) error {
	project, err := s.GetProjectWithCache(projectID)
	if err != nil {
		return err
	}

	if !user.Role.IsInstanceAdmin() && !project.IsOwnedBy(user.ID) {
		return ErrOnlyOwnerCanDelete
	}

	// comments, mentions, notifications and share links cascade in the schema
	if err := s.projectRepository.DeleteProject(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.projectCache.Invalidate(context.Background(), projectID.String())

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("Project deleted: %s", project.Name),
		&user.ID,
		&projectID,
	)

	return nil
}

// CanUserAccessProject resolves the caller's effective role. Ownership is read
// from the project itself, membership from project_memberships.
func (s *ProjectService) CanUserAccessProject(
	projectID uuid.UUID,
	user *users_models.User,
) (bool, *users_enums.ProjectRole, error) {
	if user.Role.IsInstanceAdmin() {
		adminRole := users_enums.ProjectRoleOwner
		return true, &adminRole, nil
	}

	role, err := s.GetUserProjectRole(projectID, user.ID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return false, nil, nil
		}

		return false, nil, err
	}

	return role != nil, role, nil
}

func (s *ProjectService) CanUserManageProject(projectID uuid.UUID, user *users_models.User) (bool, error) {
	canAccess, role, err := s.CanUserAccessProject(projectID, user)
	if err != nil || !canAccess {
		return false, err
	}

	return role.CanManageMembers(), nil
}

// GetUserProjectRole returns nil when the user neither owns nor belongs to the project.
func (s *ProjectService) GetUserProjectRole(projectID uuid.UUID, userID uuid.UUID) (*users_enums.ProjectRole, error) {
	project, err := s.GetProjectWithCache(projectID)
	if err != nil {
		return nil, err
	}

	if project.IsOwnedBy(userID) {
		ownerRole := users_enums.ProjectRoleOwner
		return &ownerRole, nil
	}

	return s.membershipRepository.GetUserProjectRole(projectID, userID)
}

// IsProjectMember reports whether userID owns projectID or holds a membership in it.
func (s *ProjectService) IsProjectMember(projectID uuid.UUID, userID uuid.UUID) (bool, error) {
	role, err := s.GetUserProjectRole(projectID, userID)
	if err != nil {
		return false, err
	}

	return role != nil, nil
}

// FilterProjectMembers keeps the user ids that are the owner or members of the project.
func (s *ProjectService) FilterProjectMembers(projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.GetProjectWithCache(projectID); err != nil {
		return nil, err
	}

	return s.membershipRepository.FilterMemberUserIDs(projectID, userIDs)
}

// AutocompleteMembers suggests up to five members whose username starts with query.
func (s *ProjectService) AutocompleteMembers(
	projectID uuid.UUID,
	user *users_models.User,
	query string,
) ([]projects_dto.MemberSuggestionDTO, error) {
	if !validation.IsValidMentionQuery(query) {
		return nil, ErrInvalidMentionQuery
	}

	canAccess, _, err := s.CanUserAccessProject(projectID, user)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrProjectAccessDenied
	}

	return s.membershipRepository.SearchMembersByUsernamePrefix(projectID, query, autocompleteLimit)
}

func (s *ProjectService) GetProjectAuditLogs(
	projectID uuid.UUID,
	user *users_models.User,
	request *audit_logs.GetAuditLogsRequest,
) (*audit_logs.GetAuditLogsResponse, error) {
	canAccess, _, err := s.CanUserAccessProject(projectID, user)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrAuditLogsAccessDenied
	}

	return s.auditLogService.GetProjectAuditLogs(projectID, request)
}

func (s *ProjectService) GetProjectWithCache(projectID uuid.UUID) (*projects_models.Project, error) {
	ctx := context.Background()
	projectIDStr := projectID.String()

	// Tier 1: Check cache
	if cachedProject := s.projectCache.Get(ctx, projectIDStr); cachedProject != nil {
		if cachedProject.IsNotExists {
			return nil, ErrProjectNotFound
		}

		return cachedProject, nil
	}

	// Tier 2: Database lookup with singleflight protection (prevents thundering herd)
	result, err, _ := s.singleflight.Do(projectIDStr, func() (any, error) {
		return s.projectRepository.GetProjectByID(projectID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project, ok := result.(*projects_models.Project)
	if !ok {
		return nil, fmt.Errorf("failed to cast result to Project")
	}

	if project == nil {
		// Cache the missing project to prevent future DB hits
		s.projectCache.Set(ctx, projectIDStr, &projects_models.Project{ID: projectID, IsNotExists: true})
		return nil, ErrProjectNotFound
	}

	s.projectCache.Set(ctx, projectIDStr, project)

	return project, nil
}
