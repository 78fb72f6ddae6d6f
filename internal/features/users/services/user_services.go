package users_services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	users_dto "untitledone/internal/features/users/dto"
	users_enums "untitledone/internal/features/users/enums"
	users_interfaces "untitledone/internal/features/users/interfaces"
	users_models "untitledone/internal/features/users/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrUserNotFound      = errors.New("user with this email does not exist")
	ErrWrongPassword     = errors.New("password is incorrect")
	ErrUserDeactivated   = errors.New("user account is deactivated")
	ErrInvalidToken      = errors.New("invalid token")
	ErrPasswordNotSet    = errors.New("user has no password set")
	ErrPasswordIsChanged = errors.New("password has been changed, please sign in again")
)

const tokenLifetime = 30 * 24 * time.Hour

type UserService struct {
	userRepository      users_interfaces.UserStore
	secretKeyRepository users_interfaces.SecretKeyStore
	// audit log is never nil, DI always set it
	auditLogWriter users_interfaces.AuditLogWriter
}

func NewUserService(
	userRepository users_interfaces.UserStore,
	secretKeyRepository users_interfaces.SecretKeyStore,
	auditLogWriter users_interfaces.AuditLogWriter,
) *UserService {
	return &UserService{
		userRepository:      userRepository,
		secretKeyRepository: secretKeyRepository,
		auditLogWriter:      auditLogWriter,
	}
}

func (s *UserService) SignUp(request *users_dto.SignUpRequestDTO) (*users_models.User, error) {
	existingUser, err := s.userRepository.GetUserByEmail(request.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	existingUser, err = s.userRepository.GetUserByUsername(request.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedPasswordStr := string(hashedPassword)

	user := &users_models.User{
		ID:                   uuid.New(),
		Email:                strings.TrimSpace(request.Email),
		Username:             request.Username,
		Name:                 strings.TrimSpace(request.Name),
		HashedPassword:       &hashedPasswordStr,
		PasswordCreationTime: time.Now().UTC(),
		Role:                 users_enums.UserRoleMember,
		Status:               users_enums.UserStatusActive,
		CreatedAt:            time.Now().UTC(),
	}

	if err := s.userRepository.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditLogWriter.WriteAuditLog(
		fmt.Sprintf("User registered: %s (@%s)", user.Email, user.Username),
		&user.ID,
		nil,
	)

	return user, nil
}

func (s *UserService) SignIn(request *users_dto.SignInRequestDTO) (*users_dto.SignInResponseDTO, error) {
	user, err := s.userRepository.GetUserByEmail(request.Email)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	if !user.IsActiveUser() {
		return nil, ErrUserDeactivated
	}

	if !user.HasPassword() {
		return nil, ErrPasswordNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(request.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	response, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	s.auditLogWriter.WriteAuditLog(
		fmt.Sprintf("User signed in with email: %s", user.Email),
		&user.ID,
		nil,
	)

	return response, nil
}

func (s *UserService) GetUserFromToken(token string) (*users_models.User, error) {
	secretKey, err := s.secretKeyRepository.GetSecretKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret key: %w", err)
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	userIDStr, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if !user.IsActiveUser() {
		return nil, ErrUserDeactivated
	}

	passwordCreationTimeUnix, ok := claims["passwordCreationTime"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	tokenPasswordTime := time.Unix(int64(passwordCreationTimeUnix), 0).Truncate(time.Second)
	if !tokenPasswordTime.Equal(user.PasswordCreationTime.Truncate(time.Second)) {
		return nil, ErrPasswordIsChanged
	}

	return user, nil
}

func (s *UserService) GenerateAccessToken(user *users_models.User) (*users_dto.SignInResponseDTO, error) {
	secretKey, err := s.secretKeyRepository.GetSecretKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret key: %w", err)
	}

	now := time.Now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                  user.ID.String(),
		"exp":                  now.Add(tokenLifetime).Unix(),
		"iat":                  now.Unix(),
		"role":                 string(user.Role),
		"passwordCreationTime": user.PasswordCreationTime.Unix(),
	})

	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &users_dto.SignInResponseDTO{
		UserID: user.ID,
		Email:  user.Email,
		Token:  tokenString,
	}, nil
}

func (s *UserService) ChangeUserPasswordByEmail(email string, newPassword string) error {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.ChangeUserPassword(user.ID, newPassword)
}

func (s *UserService) ChangeUserPassword(userID uuid.UUID, newPassword string) error {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepository.UpdateUserPassword(userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.auditLogWriter.WriteAuditLog("Password changed", &userID, nil)

	return nil
}

func (s *UserService) UpdateProfile(user *users_models.User, request *users_dto.UpdateProfileRequestDTO) error {
	name := strings.TrimSpace(request.Name)

	if err := s.userRepository.UpdateUserName(user.ID, name); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	user.Name = name
	return nil
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*users_models.User, error) {
	return s.userRepository.GetUserByID(userID)
}

func (s *UserService) GetCurrentUserProfile(user *users_models.User) *users_dto.UserProfileResponseDTO {
	return &users_dto.UserProfileResponseDTO{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActiveUser(),
		CreatedAt: user.CreatedAt,
	}
}
