package projects_dto

import (
	"time"

	users_enums "untitledone/internal/features/users/enums"

	"github.com/google/uuid"
)

// Project DTOs
type CreateProjectRequestDTO struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type UpdateProjectRequestDTO struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type ProjectResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`

	// User's role in this project (populated when fetching for specific user)
	UserRole *users_enums.ProjectRole `json:"userRole,omitempty"`
}

type ListProjectsResponseDTO struct {
	Projects []ProjectResponseDTO `json:"projects"`
}

// Membership DTOs

// AddMemberRequestDTO identifies the user by email or by username.
type AddMemberRequestDTO struct {
	Email    string                  `json:"email"    binding:"omitempty,email"`
	Username string                  `json:"username" binding:"omitempty,username"`
	Role     users_enums.ProjectRole `json:"role"     binding:"required"`
}

type ChangeMemberRoleRequestDTO struct {
	Role users_enums.ProjectRole `json:"role" binding:"required"`
}

type ProjectMemberResponseDTO struct {
	ID        uuid.UUID               `json:"id"        gorm:"column:id"`
	UserID    uuid.UUID               `json:"userId"    gorm:"column:user_id"`
	Username  string                  `json:"username"  gorm:"column:username"`
	Name      string                  `json:"name"      gorm:"column:name"`
	Email     string                  `json:"email"     gorm:"column:email"`
	Role      users_enums.ProjectRole `json:"role"      gorm:"column:role"`
	CreatedAt time.Time               `json:"createdAt" gorm:"column:created_at"`
}

type GetMembersResponseDTO struct {
	Members []ProjectMemberResponseDTO `json:"members"`
}

type AutocompleteRequestDTO struct {
	Query string `form:"q" binding:"required,mention_query"`
}

type MemberSuggestionDTO struct {
	ID       uuid.UUID `json:"id"       gorm:"column:id"`
	Username string    `json:"username" gorm:"column:username"`
}
