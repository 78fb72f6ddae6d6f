package users_interfaces

import (
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

type AuditLogWriter interface {
	WriteAuditLog(message string, userID *uuid.UUID, projectID *uuid.UUID)
}

type UserStore interface {
	CreateUser(user *users_models.User) error
	GetUserByEmail(email string) (*users_models.User, error)
	GetUserByUsername(username string) (*users_models.User, error)
	GetUserByID(userID uuid.UUID) (*users_models.User, error)
	UpdateUserPassword(userID uuid.UUID, hashedPassword string) error
	UpdateUserName(userID uuid.UUID, name string) error
}

type SecretKeyStore interface {
	GetSecretKey() (string, error)
}
