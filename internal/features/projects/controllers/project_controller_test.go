package projects_controllers

import (
	"net/http"
	"testing"

	projects_dto "untitledone/internal/features/projects/dto"
	projects_testing "untitledone/internal/features/projects/testing"
	users_enums "untitledone/internal/features/users/enums"
	users_middleware "untitledone/internal/features/users/middleware"
	users_models "untitledone/internal/features/users/models"
	users_testing "untitledone/internal/features/users/testing"
	test_utils "untitledone/internal/util/testing"
	"untitledone/internal/util/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateProject_WhenAuthenticated_CallerBecomesOwner(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	router, _ := createProjectTestRouter(t, owner)

	var response projects_dto.ProjectResponseDTO
	test_utils.MakePostRequestAndUnmarshal(t, router, "/api/v1/projects", "owner",
		projects_dto.CreateProjectRequestDTO{Name: "  Album  "}, http.StatusOK, &response)

	assert.Equal(t, "Album", response.Name)
	assert.Equal(t, owner.ID, response.OwnerID)
	require.NotNil(t, response.UserRole)
	assert.Equal(t, users_enums.ProjectRoleOwner, *response.UserRole)
}

func Test_CreateProject_WithoutToken_ReturnsUnauthorized(t *testing.T) {
	router, _ := createProjectTestRouter(t)

	test_utils.MakePostRequest(t, router, "/api/v1/projects", "",
		projects_dto.CreateProjectRequestDTO{Name: "Album"}, http.StatusUnauthorized)
}

func Test_GetProject_WhenNotMember_ReturnsForbidden(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	stranger := users_testing.NewTestUser("stranger")
	router, fixture := createProjectTestRouter(t, owner, stranger)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)

	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String(), "stranger", http.StatusForbidden)
	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+project.ID.String(), "owner", http.StatusOK)
}

func Test_GetProject_WhenMissing_ReturnsNotFound(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	router, _ := createProjectTestRouter(t, owner)

	test_utils.MakeGetRequest(t, router, "/api/v1/projects/"+uuid.New().String(), "owner", http.StatusNotFound)
	test_utils.MakeGetRequest(t, router, "/api/v1/projects/not-a-uuid", "owner", http.StatusBadRequest)
}

func Test_UpdateProject_WhenViewer_ReturnsForbidden(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	viewer := users_testing.NewTestUser("viewer")
	router, fixture := createProjectTestRouter(t, owner, viewer)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleViewer, viewer)
	url := "/api/v1/projects/" + project.ID.String()

	test_utils.MakePutRequest(t, router, url, "viewer", projects_dto.UpdateProjectRequestDTO{Name: "EP"}, http.StatusForbidden)

	var response projects_dto.ProjectResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, url, "viewer", http.StatusOK, &response)
	assert.Equal(t, "Album", response.Name)
}

func Test_UpdateProject_WhenOwner_RenamesAndInvalidatesCache(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	router, fixture := createProjectTestRouter(t, owner)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)
	url := "/api/v1/projects/" + project.ID.String()

	test_utils.MakePutRequest(t, router, url, "owner", projects_dto.UpdateProjectRequestDTO{Name: "EP"}, http.StatusOK)

	var response projects_dto.ProjectResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, url, "owner", http.StatusOK, &response)
	assert.Equal(t, "EP", response.Name)
	assert.Contains(t, fixture.AuditLog.Snapshot(), "Project renamed from Album to EP")
}

func Test_DeleteProject_WhenAdminMember_ReturnsForbidden(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	admin := users_testing.NewTestUser("admin")
	router, fixture := createProjectTestRouter(t, owner, admin)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleAdmin, admin)
	url := "/api/v1/projects/" + project.ID.String()

	test_utils.MakeDeleteRequest(t, router, url, "admin", http.StatusForbidden)
	test_utils.MakeDeleteRequest(t, router, url, "owner", http.StatusOK)
	test_utils.MakeGetRequest(t, router, url, "owner", http.StatusNotFound)
}

func Test_GetProjects_ReturnsOnlyProjectsOfCaller(t *testing.T) {
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	router, fixture := createProjectTestRouter(t, alice, bob)
	fixture.CreateProject("Shared", alice, users_enums.ProjectRoleMember, bob)
	fixture.CreateProject("Private", alice, users_enums.ProjectRoleMember)

	var response projects_dto.ListProjectsResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/projects", "bob", http.StatusOK, &response)

	require.Len(t, response.Projects, 1)
	assert.Equal(t, "Shared", response.Projects[0].Name)
}

func Test_AutocompleteMembers_WithPrefix_ReturnsMatchingMembers(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	albert := users_testing.NewTestUser("albert")
	bob := users_testing.NewTestUser("bob")
	router, fixture := createProjectTestRouter(t, owner, alice, albert, bob)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice, albert, bob)

	var suggestions []projects_dto.MemberSuggestionDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router,
		"/api/v1/projects/"+project.ID.String()+"/members/autocomplete?q=AL", "bob", http.StatusOK, &suggestions)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "albert", suggestions[0].Username)
	assert.Equal(t, "alice", suggestions[1].Username)
}

func Test_AutocompleteMembers_WhenNotMember_ReturnsForbidden(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	stranger := users_testing.NewTestUser("stranger")
	router, fixture := createProjectTestRouter(t, owner, stranger)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)

	test_utils.MakeGetRequest(t, router,
		"/api/v1/projects/"+project.ID.String()+"/members/autocomplete?q=ow", "stranger", http.StatusForbidden)
}

func Test_AutocompleteMembers_WithInvalidQuery_ReturnsBadRequest(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	router, fixture := createProjectTestRouter(t, owner)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)
	base := "/api/v1/projects/" + project.ID.String() + "/members/autocomplete"

	test_utils.MakeGetRequest(t, router, base, "owner", http.StatusBadRequest)
	test_utils.MakeGetRequest(t, router, base+"?q=a%20b", "owner", http.StatusBadRequest)
	test_utils.MakeGetRequest(t, router, base+"?q=abcdefghijklmnopqrstuvwxyz0123456789", "owner", http.StatusBadRequest)
}

func Test_GetProjectAuditLogs_WhenMember_ReturnsLogs(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	stranger := users_testing.NewTestUser("stranger")
	router, fixture := createProjectTestRouter(t, owner, stranger)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)
	url := "/api/v1/projects/" + project.ID.String() + "/audit-logs"

	test_utils.MakeGetRequest(t, router, url, "owner", http.StatusOK)
	test_utils.MakeGetRequest(t, router, url, "stranger", http.StatusForbidden)
}

// users are authenticated by passing their username as the token
func createProjectTestRouter(t *testing.T, users ...*users_models.User) (*gin.Engine, *projects_testing.Fixture) {
	t.Helper()
	require.NoError(t, validation.RegisterValidators())

	fixture := projects_testing.NewFixture(users...)

	tokens := users_testing.TokenUsers{}
	for _, user := range users {
		tokens[user.Username] = user
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/api/v1")
	protected.Use(users_middleware.AuthMiddleware(tokens))

	NewProjectController(fixture.ProjectService).RegisterRoutes(protected)
	NewMembershipController(fixture.MembershipService).RegisterRoutes(protected)

	return router, fixture
}
