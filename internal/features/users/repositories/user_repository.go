package users_repositories

import (
	"errors"
	"strings"
	"time"

	users_models "untitledone/internal/features/users/models"
	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct{}

func (r *UserRepository) CreateUser(user *users_models.User) error {
	return storage.GetDb().Create(user).Error
}

func (r *UserRepository) GetUserByEmail(email string) (*users_models.User, error) {
	return r.first(storage.GetDb().Where("LOWER(email) = ?", strings.ToLower(email)))
}

func (r *UserRepository) GetUserByUsername(username string) (*users_models.User, error) {
	return r.first(storage.GetDb().Where("LOWER(username) = ?", strings.ToLower(username)))
}

// GetUserByID returns nil without error when the user does not exist.
func (r *UserRepository) GetUserByID(userID uuid.UUID) (*users_models.User, error) {
	return r.first(storage.GetDb().Where("id = ?", userID))
}

// GetUsersByUsernames matches usernames ignoring case. Unknown names are skipped.
func (r *UserRepository) GetUsersByUsernames(usernames []string) ([]*users_models.User, error) {
	if len(usernames) == 0 {
		return []*users_models.User{}, nil
	}

	lowered := make([]string, 0, len(usernames))
	for _, username := range usernames {
		lowered = append(lowered, strings.ToLower(username))
	}

	var users []*users_models.User
	if err := storage.GetDb().Where("LOWER(username) IN ?", lowered).Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) GetUsersByIDs(userIDs []uuid.UUID) ([]*users_models.User, error) {
	if len(userIDs) == 0 {
		return []*users_models.User{}, nil
	}

	var users []*users_models.User
	if err := storage.GetDb().Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) UpdateUserPassword(userID uuid.UUID, hashedPassword string) error {
	return storage.GetDb().Model(&users_models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"hashed_password":        hashedPassword,
			"password_creation_time": time.Now().UTC(),
		}).Error
}

func (r *UserRepository) UpdateUserName(userID uuid.UUID, name string) error {
	return storage.GetDb().Model(&users_models.User{}).
		Where("id = ?", userID).
		Update("name", name).Error
}

func (r *UserRepository) first(query *gorm.DB) (*users_models.User, error) {
	var user users_models.User

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &user, nil
}
