package share_links_services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	projects_services "untitledone/internal/features/projects/services"
	share_links_dto "untitledone/internal/features/share_links/dto"
	share_links_enums "untitledone/internal/features/share_links/enums"
	share_links_models "untitledone/internal/features/share_links/models"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

const (
	MaxActiveLinks = 3
	LinkLifetime   = time.Hour
	tokenBytes     = 32
)

var (
	ErrShareAccessDenied = errors.New("Access denied")
	ErrActiveLinkLimit   = errors.New("Maximum of 3 active links reached")
	ErrShareLinkNotFound = errors.New("share link not found")
	ErrRevokeDenied      = errors.New("only the link creator or the project owner can revoke this link")
)

// RedemptionError carries the reason a share link could not be redeemed.
type RedemptionError struct {
	Reason share_links_enums.RedemptionFailure
}

func (e *RedemptionError) Error() string {
	return "share link redemption failed: " + string(e.Reason)
}

func redemptionFailed(reason share_links_enums.RedemptionFailure) error {
	return &RedemptionError{Reason: reason}
}

type ShareLinkService struct {
	store          ShareLinkStore
	projectAccess  ProjectAccess
	memberGranter  MemberGranter
	auditLogWriter AuditLogWriter
	siteOrigin     string
	logger         *slog.Logger
	now            func() time.Time
}

func NewShareLinkService(
	store ShareLinkStore,
	projectAccess ProjectAccess,
	memberGranter MemberGranter,
	auditLogWriter AuditLogWriter,
	siteOrigin string,
	logger *slog.Logger,
) *ShareLinkService {
	return &ShareLinkService{
		store:          store,
		projectAccess:  projectAccess,
		memberGranter:  memberGranter,
		auditLogWriter: auditLogWriter,
		siteOrigin:     siteOrigin,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *ShareLinkService) WithClock(now func() time.Time) *ShareLinkService {
	s.now = now
	return s
}

// IssueShareLink creates a one hour, single use link granting viewer access.
// The cap check and the insert are not atomic, so concurrent requests may
// briefly exceed MaxActiveLinks.
func (s *ShareLinkService) IssueShareLink(
	ctx context.Context,
	projectID uuid.UUID,
	user *users_models.User,
) (*share_links_dto.IssueShareLinkResponseDTO, error) {
	if err := s.requireAccess(projectID, user); err != nil {
		return nil, err
	}

	now := s.now()

	active, err := s.store.CountActiveLinks(ctx, projectID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count active share links: %w", err)
	}
	if active >= MaxActiveLinks {
		return nil, ErrActiveLinkLimit
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	link := &share_links_models.ShareLink{
		ID:        uuid.New(),
		ProjectID: projectID,
		Token:     token,
		CreatedBy: user.ID,
		ExpiresAt: now.Add(LinkLifetime),
		CreatedAt: now,
	}

	if err := s.store.CreateShareLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create share link: %w", err)
	}

	s.auditLogWriter.WriteAuditLog(
		fmt.Sprintf("Share link created, expires at %s", link.ExpiresAt.Format(time.RFC3339)),
		&user.ID,
		&projectID,
	)

	return &share_links_dto.IssueShareLinkResponseDTO{
		ID:        link.ID,
		URL:       s.shareURL(link.Token),
		Token:     link.Token,
		ExpiresAt: link.ExpiresAt,
		CreatedAt: link.CreatedAt,
	}, nil
}

func (s *ShareLinkService) GetProjectShareLinks(
	ctx context.Context,
	projectID uuid.UUID,
	user *users_models.User,
) ([]share_links_dto.ShareLinkDTO, error) {
	if err := s.requireAccess(projectID, user); err != nil {
		return nil, err
	}

	links, err := s.store.GetProjectShareLinks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share links: %w", err)
	}

	now := s.now()
	result := make([]share_links_dto.ShareLinkDTO, 0, len(links))
	for _, link := range links {
		result = append(result, share_links_dto.ShareLinkDTO{
			ID:        link.ID,
			ProjectID: link.ProjectID,
			URL:       s.shareURL(link.Token),
			CreatedBy: link.CreatedBy,
			ExpiresAt: link.ExpiresAt,
			UsedBy:    link.UsedBy,
			UsedAt:    link.UsedAt,
			Revoked:   link.Revoked,
			Status:    link.Status(now),
			CreatedAt: link.CreatedAt,
		})
	}

	return result, nil
}

// RevokeShareLink is allowed for the link creator and the project owner.
// Revoking twice is not an error.
func (s *ShareLinkService) RevokeShareLink(ctx context.Context, linkID uuid.UUID, user *users_models.User) error {
	link, err := s.store.GetShareLinkByID(ctx, linkID)
	if err != nil {
		return fmt.Errorf("failed to get share link: %w", err)
	}
	if link == nil {
		return ErrShareLinkNotFound
	}

	if link.CreatedBy != user.ID {
		canAccess, role, err := s.projectAccess.CanUserAccessProject(link.ProjectID, user)
		if err != nil {
			return fmt.Errorf("failed to check project access: %w", err)
		}
		if !canAccess || role == nil || *role != users_enums.ProjectRoleOwner {
			return ErrRevokeDenied
		}
	}

	if link.Revoked {
		return nil
	}

	if err := s.store.RevokeShareLink(ctx, link.ID); err != nil {
		return fmt.Errorf("failed to revoke share link: %w", err)
	}

	s.auditLogWriter.WriteAuditLog("Share link revoked", &user.ID, &link.ProjectID)

	return nil
}

// RedeemShareLink returns the project the user may now open, or a
// *RedemptionError. The checks run in a fixed order so that a link in several
// terminal states reports revoked first, then expired, then used.
func (s *ShareLinkService) RedeemShareLink(
	ctx context.Context,
	token string,
	user *users_models.User,
) (uuid.UUID, error) {
	link, err := s.store.GetShareLinkByToken(ctx, token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get share link: %w", err)
	}
	if link == nil {
		return uuid.Nil, redemptionFailed(share_links_enums.RedemptionNotFound)
	}

	now := s.now()

	if link.Revoked {
		return uuid.Nil, redemptionFailed(share_links_enums.RedemptionRevoked)
	}
	if link.IsExpired(now) {
		return uuid.Nil, redemptionFailed(share_links_enums.RedemptionExpired)
	}
	if link.UsedBy != nil {
		if *link.UsedBy == user.ID {
			return link.ProjectID, nil
		}

		return uuid.Nil, redemptionFailed(share_links_enums.RedemptionUsed)
	}

	if _, err := s.projectAccess.GetProjectWithCache(link.ProjectID); err != nil {
		if errors.Is(err, projects_services.ErrProjectNotFound) {
			return uuid.Nil, redemptionFailed(share_links_enums.RedemptionProjectNotFound)
		}

		return uuid.Nil, fmt.Errorf("failed to get project: %w", err)
	}

	// no access is granted unless this request won the claim
	claimed, err := s.store.ClaimShareLink(ctx, link.ID, user.ID, now)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to claim share link: %w", err)
	}
	if !claimed {
		return s.resolveLostClaim(ctx, link.ID, user)
	}

	if _, err := s.memberGranter.GrantViewerAccess(link.ProjectID, user.ID, link.CreatedBy); err != nil {
		s.logger.ErrorContext(ctx, "failed to grant viewer access from share link",
			"error", err,
			"linkId", link.ID,
			"userId", user.ID,
		)

		if err := s.store.ReleaseShareLink(context.WithoutCancel(ctx), link.ID, user.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to release share link", "error", err, "linkId", link.ID)
		}

		return uuid.Nil, redemptionFailed(share_links_enums.RedemptionFailedToAddMember)
	}

	s.auditLogWriter.WriteAuditLog(
		fmt.Sprintf("Share link redeemed by %s", user.Username),
		&user.ID,
		&link.ProjectID,
	)

	return link.ProjectID, nil
}

// resolveLostClaim handles a claim that matched no row: either the same user
// won in a parallel request or someone else did.
func (s *ShareLinkService) resolveLostClaim(
	ctx context.Context,
	linkID uuid.UUID,
	user *users_models.User,
) (uuid.UUID, error) {
	current, err := s.store.GetShareLinkByID(ctx, linkID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to reload share link: %w", err)
	}

	if current != nil && current.UsedBy != nil && *current.UsedBy == user.ID {
		return current.ProjectID, nil
	}

	return uuid.Nil, redemptionFailed(share_links_enums.RedemptionUsed)
}

func (s *ShareLinkService) requireAccess(projectID uuid.UUID, user *users_models.User) error {
	canAccess, _, err := s.projectAccess.CanUserAccessProject(projectID, user)
	if err != nil {
		return fmt.Errorf("failed to check project access: %w", err)
	}
	if !canAccess {
		return ErrShareAccessDenied
	}

	return nil
}

func (s *ShareLinkService) shareURL(token string) string {
	return s.siteOrigin + "/share/" + token
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
