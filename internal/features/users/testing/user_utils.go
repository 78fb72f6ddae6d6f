package users_testing

import (
	"errors"
	"strings"
	"sync"
	"time"

	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

// NewTestUser builds an active member in memory, it is not persisted.
func NewTestUser(username string) *users_models.User {
	hashedPassword := "$2a$10$test"

	return &users_models.User{
		ID:                   uuid.New(),
		Email:                strings.ToLower(username) + "@test.com",
		Username:             username,
		Name:                 strings.ToUpper(username[:1]) + username[1:],
		HashedPassword:       &hashedPassword,
		PasswordCreationTime: time.Now().UTC(),
		Role:                 users_enums.UserRoleMember,
		Status:               users_enums.UserStatusActive,
		CreatedAt:            time.Now().UTC(),
	}
}

// InMemoryUserRepository mirrors UserRepository over a map for service tests.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*users_models.User
}

func NewInMemoryUserRepository(users ...*users_models.User) *InMemoryUserRepository {
	repository := &InMemoryUserRepository{users: map[uuid.UUID]*users_models.User{}}
	for _, user := range users {
		repository.users[user.ID] = user
	}

	return repository
}

func (r *InMemoryUserRepository) CreateUser(user *users_models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) GetUserByEmail(email string) (*users_models.User, error) {
	return r.find(func(user *users_models.User) bool {
		return strings.EqualFold(user.Email, email)
	}), nil
}

func (r *InMemoryUserRepository) GetUserByUsername(username string) (*users_models.User, error) {
	return r.find(func(user *users_models.User) bool {
		return strings.EqualFold(user.Username, username)
	}), nil
}

func (r *InMemoryUserRepository) GetUserByID(userID uuid.UUID) (*users_models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.users[userID], nil
}

func (r *InMemoryUserRepository) GetUsersByUsernames(usernames []string) ([]*users_models.User, error) {
	result := []*users_models.User{}
	for _, username := range usernames {
		if user, _ := r.GetUserByUsername(username); user != nil {
			result = append(result, user)
		}
	}

	return result, nil
}

func (r *InMemoryUserRepository) GetUsersByIDs(userIDs []uuid.UUID) ([]*users_models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*users_models.User{}
	for _, userID := range userIDs {
		if user, ok := r.users[userID]; ok {
			result = append(result, user)
		}
	}

	return result, nil
}

func (r *InMemoryUserRepository) UpdateUserPassword(userID uuid.UUID, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[userID]; ok {
		user.HashedPassword = &hashedPassword
		user.PasswordCreationTime = time.Now().UTC().Add(time.Second)
	}

	return nil
}

func (r *InMemoryUserRepository) UpdateUserName(userID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[userID]; ok {
		user.Name = name
	}

	return nil
}

func (r *InMemoryUserRepository) find(match func(user *users_models.User) bool) *users_models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			return user
		}
	}

	return nil
}

type StaticSecretKey string

func (s StaticSecretKey) GetSecretKey() (string, error) {
	return string(s), nil
}

// RecordingAuditLogWriter keeps audit messages in memory.
type RecordingAuditLogWriter struct {
	mu       sync.Mutex
	Messages []string
}

func (w *RecordingAuditLogWriter) WriteAuditLog(message string, userID *uuid.UUID, projectID *uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Messages = append(w.Messages, message)
}

func (w *RecordingAuditLogWriter) Snapshot() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.Messages...)
}

// TokenUsers authenticates by using the raw token as a map key.
type TokenUsers map[string]*users_models.User

func (t TokenUsers) GetUserFromToken(token string) (*users_models.User, error) {
	user, ok := t[token]
	if !ok {
		return nil, errors.New("unknown token")
	}

	return user, nil
}
