package users_controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	users_dto "untitledone/internal/features/users/dto"
	users_middleware "untitledone/internal/features/users/middleware"
	users_services "untitledone/internal/features/users/services"
	users_testing "untitledone/internal/features/users/testing"
	test_utils "untitledone/internal/util/testing"
	"untitledone/internal/util/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func Test_SignUpUser_WithValidData_UserCreated(t *testing.T) {
	router, _ := createUserTestRouter(t)

	request := users_dto.SignUpRequestDTO{
		Email:    "test" + uuid.New().String()[:8] + "@example.com",
		Username: "alice",
		Name:     "Alice",
		Password: "testpassword123",
	}

	var profile users_dto.UserProfileResponseDTO
	test_utils.MakePostRequestAndUnmarshal(t, router, "/api/v1/users/signup", "", request, http.StatusOK, &profile)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Alice", profile.Name)
	assert.True(t, profile.IsActive)
}

func Test_SignUpUser_WithInvalidJSON_ReturnsBadRequest(t *testing.T) {
	router, _ := createUserTestRouter(t)

	resp := test_utils.MakeRequest(t, router, test_utils.RequestOptions{
		Method:         "POST",
		URL:            "/api/v1/users/signup",
		Body:           "invalid json",
		ExpectedStatus: http.StatusBadRequest,
	})

	assert.Contains(t, string(resp.Body), "Invalid request format")
}

func Test_SignUpUser_WithDuplicateEmailOrUsername_ReturnsConflict(t *testing.T) {
	router, _ := createUserTestRouter(t)

	request := users_dto.SignUpRequestDTO{
		Email:    "duplicate@example.com",
		Username: "dup_user",
		Password: "testpassword123",
	}
	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", request, http.StatusOK)

	resp := test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", request, http.StatusConflict)
	assert.Contains(t, string(resp.Body), "already exists")

	request.Email = "other@example.com"
	request.Username = "DUP_USER"
	resp = test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", request, http.StatusConflict)
	assert.Contains(t, string(resp.Body), "username is already taken")
}

func Test_SignUpUser_WithValidationErrors_ReturnsBadRequest(t *testing.T) {
	router, _ := createUserTestRouter(t)

	testCases := []struct {
		name    string
		request users_dto.SignUpRequestDTO
	}{
		{
			name:    "missing email",
			request: users_dto.SignUpRequestDTO{Username: "bob", Password: "testpassword123"},
		},
		{
			name:    "missing password",
			request: users_dto.SignUpRequestDTO{Email: "test@example.com", Username: "bob"},
		},
		{
			name:    "short password",
			request: users_dto.SignUpRequestDTO{Email: "test@example.com", Username: "bob", Password: "short"},
		},
		{
			name:    "username with punctuation",
			request: users_dto.SignUpRequestDTO{Email: "test@example.com", Username: "bob!", Password: "testpassword123"},
		},
		{
			name:    "username too short",
			request: users_dto.SignUpRequestDTO{Email: "test@example.com", Username: "bo", Password: "testpassword123"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", tc.request, http.StatusBadRequest)
		})
	}
}

func Test_SignInUser_WithValidCredentials_ReturnsTokenUsableForMe(t *testing.T) {
	router, _ := createUserTestRouter(t)
	signUp(t, router, "signin@example.com", "signin_user", "testpassword123")

	var response users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: "signin@example.com", Password: "testpassword123"},
		http.StatusOK,
		&response,
	)

	assert.NotEmpty(t, response.Token)
	assert.NotEqual(t, uuid.Nil, response.UserID)

	var profile users_dto.UserProfileResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/users/me", "Bearer "+response.Token, http.StatusOK, &profile)
	assert.Equal(t, "signin_user", profile.Username)
}

func Test_SignInUser_WithWrongPassword_ReturnsBadRequest(t *testing.T) {
	router, _ := createUserTestRouter(t)
	signUp(t, router, "wrong@example.com", "wrong_pw", "testpassword123")

	resp := test_utils.MakePostRequest(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: "wrong@example.com", Password: "wrongpassword"},
		http.StatusBadRequest,
	)
	assert.Contains(t, string(resp.Body), "password is incorrect")
}

func Test_SignInUser_WithNonExistentUser_ReturnsBadRequest(t *testing.T) {
	router, _ := createUserTestRouter(t)

	resp := test_utils.MakePostRequest(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: "nobody@example.com", Password: "testpassword123"},
		http.StatusBadRequest,
	)
	assert.Contains(t, string(resp.Body), "does not exist")
}

func Test_ChangeUserPassword_WithValidData_OldTokenRejected(t *testing.T) {
	router, _ := createUserTestRouter(t)
	signUp(t, router, "changepass@example.com", "change_pw", "oldpassword123")
	token := signIn(t, router, "changepass@example.com", "oldpassword123")

	test_utils.MakePutRequest(
		t,
		router,
		"/api/v1/users/change-password",
		"Bearer "+token,
		users_dto.ChangePasswordRequestDTO{NewPassword: "newpassword123"},
		http.StatusOK,
	)

	test_utils.MakeGetRequest(t, router, "/api/v1/users/me", "Bearer "+token, http.StatusUnauthorized)
	test_utils.MakePostRequest(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: "changepass@example.com", Password: "oldpassword123"},
		http.StatusBadRequest,
	)
	signIn(t, router, "changepass@example.com", "newpassword123")
}

func Test_ChangeUserPassword_WithoutAuth_ReturnsUnauthorized(t *testing.T) {
	router, _ := createUserTestRouter(t)

	test_utils.MakePutRequest(
		t,
		router,
		"/api/v1/users/change-password",
		"",
		users_dto.ChangePasswordRequestDTO{NewPassword: "newpassword123"},
		http.StatusUnauthorized,
	)
}

func Test_UpdateProfile_WithName_NameReturned(t *testing.T) {
	router, _ := createUserTestRouter(t)
	signUp(t, router, "profile@example.com", "profile_user", "testpassword123")
	token := signIn(t, router, "profile@example.com", "testpassword123")

	var profile users_dto.UserProfileResponseDTO
	resp := test_utils.MakePutRequest(
		t,
		router,
		"/api/v1/users/me",
		"Bearer "+token,
		users_dto.UpdateProfileRequestDTO{Name: "  Profile Person "},
		http.StatusOK,
	)
	require.NoError(t, json.Unmarshal(resp.Body, &profile))

	assert.Equal(t, "Profile Person", profile.Name)
}

func Test_SignUp_WritesAuditLog(t *testing.T) {
	router, auditLog := createUserTestRouter(t)
	signUp(t, router, "audit@example.com", "audited", "testpassword123")

	assert.Contains(t, auditLog.Snapshot(), "User registered: audit@example.com (@audited)")
}

func createUserTestRouter(t *testing.T) (*gin.Engine, *users_testing.RecordingAuditLogWriter) {
	t.Helper()
	require.NoError(t, validation.RegisterValidators())

	auditLog := &users_testing.RecordingAuditLogWriter{}
	userService := users_services.NewUserService(
		users_testing.NewInMemoryUserRepository(),
		users_testing.StaticSecretKey("test-secret"),
		auditLog,
	)
	controller := NewUserController(userService, rate.NewLimiter(rate.Inf, 0))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/api/v1")
	controller.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(users_middleware.AuthMiddleware(userService))
	controller.RegisterProtectedRoutes(protected)

	return router, auditLog
}

func signUp(t *testing.T, router *gin.Engine, email string, username string, password string) {
	t.Helper()

	test_utils.MakePostRequest(t, router, "/api/v1/users/signup", "", users_dto.SignUpRequestDTO{
		Email:    email,
		Username: username,
		Password: password,
	}, http.StatusOK)
}

func signIn(t *testing.T, router *gin.Engine, email string, password string) string {
	t.Helper()

	var response users_dto.SignInResponseDTO
	test_utils.MakePostRequestAndUnmarshal(
		t,
		router,
		"/api/v1/users/signin",
		"",
		users_dto.SignInRequestDTO{Email: email, Password: password},
		http.StatusOK,
		&response,
	)

	return response.Token
}
