package users_models

import (
	"time"

	users_enums "untitledone/internal/features/users/enums"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	// unique ignoring case, the handle used in @mentions
	Username             string                 `json:"username"`
	Name                 string                 `json:"name"`
	HashedPassword       *string                `json:"-"        gorm:"column:hashed_password"`
	PasswordCreationTime time.Time              `json:"-"        gorm:"column:password_creation_time"`
	Role                 users_enums.UserRole   `json:"role"`
	Status               users_enums.UserStatus `json:"status"`
	CreatedAt            time.Time              `json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActiveUser() bool {
	return u.Status == users_enums.UserStatusActive
}

func (u *User) HasPassword() bool {
	return u.HashedPassword != nil && *u.HashedPassword != ""
}

// DisplayName is the name shown in emails, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}

	return u.Username
}

// SecretKey is the single row holding the JWT signing secret.
type SecretKey struct {
	Secret string `gorm:"column:secret"`
}

func (SecretKey) TableName() string {
	return "secret_keys"
}
