package projects_repositories

import (
	"errors"
	"strings"
	"time"

	projects_dto "untitledone/internal/features/projects/dto"
	projects_models "untitledone/internal/features/projects/models"
	users_enums "untitledone/internal/features/users/enums"
	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository struct{}

func (r *MembershipRepository) CreateMembership(membership *projects_models.ProjectMembership) error {
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}

	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now().UTC()
	}

	return storage.GetDb().Create(membership).Error
}

func (r *MembershipRepository) GetMembershipByUserAndProject(
	userID, projectID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	var membership projects_models.ProjectMembership

	if err := storage.GetDb().
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &membership, nil
}

func (r *MembershipRepository) GetProjectMembers(
	projectID uuid.UUID,
) ([]*projects_dto.ProjectMemberResponseDTO, error) {
	members := make([]*projects_dto.ProjectMemberResponseDTO, 0)

	err := storage.GetDb().
		Table("project_memberships pm").
		Select("pm.id, pm.user_id, u.username, u.name, u.email, pm.role, pm.created_at").
		Joins("JOIN users u ON pm.user_id = u.id").
		Where("pm.project_id = ?", projectID).
		Order("pm.created_at ASC").
		Scan(&members).Error

	return members, err
}

func (r *MembershipRepository) UpdateMemberRole(userID, projectID uuid.UUID, role users_enums.ProjectRole) error {
	return storage.GetDb().
		Model(&projects_models.ProjectMembership{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Update("role", role).Error
}

func (r *MembershipRepository) RemoveMember(userID, projectID uuid.UUID) error {
	return storage.GetDb().
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&projects_models.ProjectMembership{}).Error
}

func (r *MembershipRepository) GetUserProjectRole(projectID, userID uuid.UUID) (*users_enums.ProjectRole, error) {
	membership, err := r.GetMembershipByUserAndProject(userID, projectID)
	if err != nil || membership == nil {
		return nil, err
	}

	return &membership.Role, nil
}

func (r *MembershipRepository) GetProjectsWithRolesByUserID(
	userRole users_enums.UserRole,
	userID uuid.UUID,
) ([]projects_dto.ProjectResponseDTO, error) {
	results := make([]projects_dto.ProjectResponseDTO, 0)

	if userRole.IsInstanceAdmin() {
		err := storage.GetDb().Table("projects").Order("name ASC").Scan(&results).Error
		return results, err
	}

	err := storage.GetDb().
		Table("projects p").
		Select("p.id, p.name, p.owner_id, p.created_at, pm.role as user_role").
		Joins("JOIN project_memberships pm ON p.id = pm.project_id").
		Where("pm.user_id = ?", userID).
		Order("p.name ASC").
		Scan(&results).Error

	return results, err
}

// FilterMemberUserIDs keeps the ids that own the project or hold a membership in it.
func (r *MembershipRepository) FilterMemberUserIDs(projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	members := make([]uuid.UUID, 0)
	if len(userIDs) == 0 {
		return members, nil
	}

	err := storage.GetDb().Raw(`
		SELECT p.owner_id AS user_id FROM projects p
		WHERE p.id = ? AND p.owner_id IN ?
		UNION
		SELECT pm.user_id FROM project_memberships pm
		WHERE pm.project_id = ? AND pm.user_id IN ?`,
		projectID, userIDs, projectID, userIDs,
	).Scan(&members).Error

	return members, err
}

// SearchMembersByUsernamePrefix matches the prefix ignoring case among owner and members.
func (r *MembershipRepository) SearchMembersByUsernamePrefix(
	projectID uuid.UUID,
	prefix string,
	limit int,
) ([]projects_dto.MemberSuggestionDTO, error) {
	suggestions := make([]projects_dto.MemberSuggestionDTO, 0)

	err := storage.GetDb().Raw(`
		SELECT u.id, u.username FROM users u
		WHERE LOWER(u.username) LIKE ? ESCAPE '\'
		AND (
			u.id = (SELECT owner_id FROM projects WHERE id = ?)
			OR EXISTS (
				SELECT 1 FROM project_memberships pm
				WHERE pm.project_id = ? AND pm.user_id = u.id
			)
		)
		ORDER BY LOWER(u.username) ASC
		LIMIT ?`,
		escapeLike(strings.ToLower(prefix))+"%", projectID, projectID, limit,
	).Scan(&suggestions).Error

	return suggestions, err
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
