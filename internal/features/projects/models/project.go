package projects_models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID `json:"id"        gorm:"column:id"`
	Name      string    `json:"name"      gorm:"column:name"`
	OwnerID   uuid.UUID `json:"ownerId"   gorm:"column:owner_id"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`

	// Used for caching non-existent projects
	IsNotExists bool `json:"isNotExists,omitempty" gorm:"-"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
