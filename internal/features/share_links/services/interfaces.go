package share_links_services

import (
	"context"
	"time"

	projects_models "untitledone/internal/features/projects/models"
	share_links_models "untitledone/internal/features/share_links/models"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

type ShareLinkStore interface {
	CreateShareLink(ctx context.Context, link *share_links_models.ShareLink) error
	CountActiveLinks(ctx context.Context, projectID uuid.UUID, now time.Time) (int64, error)
	GetShareLinkByToken(ctx context.Context, token string) (*share_links_models.ShareLink, error)
	GetShareLinkByID(ctx context.Context, linkID uuid.UUID) (*share_links_models.ShareLink, error)
	GetProjectShareLinks(ctx context.Context, projectID uuid.UUID) ([]*share_links_models.ShareLink, error)
	RevokeShareLink(ctx context.Context, linkID uuid.UUID) error
	ClaimShareLink(ctx context.Context, linkID uuid.UUID, userID uuid.UUID, now time.Time) (bool, error)
	ReleaseShareLink(ctx context.Context, linkID uuid.UUID, userID uuid.UUID) error
}

type ProjectAccess interface {
	CanUserAccessProject(projectID uuid.UUID, user *users_models.User) (bool, *users_enums.ProjectRole, error)
	GetProjectWithCache(projectID uuid.UUID) (*projects_models.Project, error)
}

type MemberGranter interface {
	GrantViewerAccess(projectID uuid.UUID, userID uuid.UUID, grantedBy uuid.UUID) (bool, error)
}

type AuditLogWriter interface {
	WriteAuditLog(message string, userID *uuid.UUID, projectID *uuid.UUID)
}
