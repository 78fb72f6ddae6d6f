package notifications_repositories

import (
	"context"
	"errors"
	"time"

	notifications_models "untitledone/internal/features/notifications/models"
	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferencesRepository struct{}

// GetPreferences returns nil when the user never saved preferences.
func (r *PreferencesRepository) GetPreferences(
	ctx context.Context,
	userID uuid.UUID,
) (*notifications_models.NotificationPreferences, error) {
	var preferences notifications_models.NotificationPreferences

	if err := storage.GetDb().
		WithContext(ctx).
		Where("user_id = ?", userID).
		First(&preferences).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &preferences, nil
}

func (r *PreferencesRepository) UpsertPreferences(
	ctx context.Context,
	preferences *notifications_models.NotificationPreferences,
) error {
	preferences.UpdatedAt = time.Now().UTC()

	return storage.GetDb().
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email_mentions_enabled",
				"in_app_mentions_enabled",
				"email_frequency",
				"updated_at",
			}),
		}).
		Create(preferences).Error
}
