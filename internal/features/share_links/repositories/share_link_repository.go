package share_links_repositories

import (
	"context"
	"errors"
	"time"

	share_links_models "untitledone/internal/features/share_links/models"
	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareLinkRepository struct{}

func (r *ShareLinkRepository) CreateShareLink(ctx context.Context, link *share_links_models.ShareLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	return storage.GetDb().WithContext(ctx).Create(link).Error
}

// CountActiveLinks counts links that are neither revoked, used nor expired at now.
func (r *ShareLinkRepository) CountActiveLinks(ctx context.Context, projectID uuid.UUID, now time.Time) (int64, error) {
	var count int64

	err := storage.GetDb().
		WithContext(ctx).
		Model(&share_links_models.ShareLink{}).
		Where("project_id = ? AND revoked = ? AND used_by IS NULL AND expires_at > ?", projectID, false, now).
		Count(&count).Error

	return count, err
}

func (r *ShareLinkRepository) GetShareLinkByToken(ctx context.Context, token string) (*share_links_models.ShareLink, error) {
	return r.findOne(ctx, "token = ?", token)
}

func (r *ShareLinkRepository) GetShareLinkByID(ctx context.Context, linkID uuid.UUID) (*share_links_models.ShareLink, error) {
	return r.findOne(ctx, "id = ?", linkID)
}

func (r *ShareLinkRepository) GetProjectShareLinks(
	ctx context.Context,
	projectID uuid.UUID,
) ([]*share_links_models.ShareLink, error) {
	links := make([]*share_links_models.ShareLink, 0)

	err := storage.GetDb().
		WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&links).Error

	return links, err
}

func (r *ShareLinkRepository) RevokeShareLink(ctx context.Context, linkID uuid.UUID) error {
	return storage.GetDb().
		WithContext(ctx).
		Model(&share_links_models.ShareLink{}).
		Where("id = ?", linkID).
		Update("revoked", true).Error
}

// ClaimShareLink marks the link used by userID only if nobody used or revoked
// it first. Exactly one concurrent caller gets true.
func (r *ShareLinkRepository) ClaimShareLink(
	ctx context.Context,
	linkID uuid.UUID,
	userID uuid.UUID,
	now time.Time,
) (bool, error) {
	result := storage.GetDb().
		WithContext(ctx).
		Model(&share_links_models.ShareLink{}).
		Where("id = ? AND used_by IS NULL AND revoked = ?", linkID, false).
		Updates(map[string]any{"used_by": userID, "used_at": now})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ReleaseShareLink undoes a claim held by userID. It is only called when the
// viewer grant that followed the claim failed, so no access exists under it.
func (r *ShareLinkRepository) ReleaseShareLink(ctx context.Context, linkID uuid.UUID, userID uuid.UUID) error {
	return storage.GetDb().
		WithContext(ctx).
		Model(&share_links_models.ShareLink{}).
		Where("id = ? AND used_by = ?", linkID, userID).
		Updates(map[string]any{"used_by": nil, "used_at": nil}).Error
}

func (r *ShareLinkRepository) findOne(ctx context.Context, query string, arg any) (*share_links_models.ShareLink, error) {
	var link share_links_models.ShareLink

	if err := storage.GetDb().WithContext(ctx).Where(query, arg).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &link, nil
}

// DeleteExpiredBefore removes links whose expiry passed before cutoff, whatever their state.
func (r *ShareLinkRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := storage.GetDb().
		WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&share_links_models.ShareLink{})

	return result.RowsAffected, result.Error
}
