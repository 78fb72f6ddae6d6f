package projects_models

import (
	"time"

	users_enums "untitledone/internal/features/users/enums"

	"github.com/google/uuid"
)

// ProjectMembership is unique per (project, user). Share link redemption
// inserts VIEWER rows, so callers treat a duplicate insert as already granted.
type ProjectMembership struct {
	ID        uuid.UUID               `json:"id"        gorm:"column:id"`
	ProjectID uuid.UUID               `json:"projectId" gorm:"column:project_id"`
	UserID    uuid.UUID               `json:"userId"    gorm:"column:user_id"`
	Role      users_enums.ProjectRole `json:"role"      gorm:"column:role"`
	AddedBy   *uuid.UUID              `json:"addedBy"   gorm:"column:added_by"`
	CreatedAt time.Time               `json:"createdAt" gorm:"column:created_at"`
}

func (ProjectMembership) TableName() string {
	return "project_memberships"
}

// NewProjectMembership leaves AddedBy nil for the owner row written at project creation.
func NewProjectMembership(
	projectID uuid.UUID,
	userID uuid.UUID,
	role users_enums.ProjectRole,
	addedBy *uuid.UUID,
) *ProjectMembership {
	return &ProjectMembership{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
}
