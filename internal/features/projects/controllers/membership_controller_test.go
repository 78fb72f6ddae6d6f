package projects_controllers

import (
	"net/http"
	"testing"

	projects_dto "untitledone/internal/features/projects/dto"
	users_enums "untitledone/internal/features/users/enums"
	users_testing "untitledone/internal/features/users/testing"
	test_utils "untitledone/internal/util/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AddMember_ByUsername_MemberListed(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	router, fixture := createProjectTestRouter(t, owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)
	url := "/api/v1/projects/" + project.ID.String() + "/members"

	var added projects_dto.ProjectMemberResponseDTO
	test_utils.MakePostRequestAndUnmarshal(t, router, url, "owner", projects_dto.AddMemberRequestDTO{
		Username: "Alice",
		Role:     users_enums.ProjectRoleMember,
	}, http.StatusOK, &added)
	assert.Equal(t, alice.ID, added.UserID)

	var members projects_dto.GetMembersResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, url, "alice", http.StatusOK, &members)
	assert.Len(t, members.Members, 2)
}

func Test_AddMember_WhenAlreadyMember_ReturnsConflict(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	router, fixture := createProjectTestRouter(t, owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice)

	test_utils.MakePostRequest(t, router, "/api/v1/projects/"+project.ID.String()+"/members", "owner",
		projects_dto.AddMemberRequestDTO{Email: alice.Email, Role: users_enums.ProjectRoleViewer}, http.StatusConflict)
}

func Test_AddMember_WithUnknownUser_ReturnsNotFound(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	router, fixture := createProjectTestRouter(t, owner)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)

	test_utils.MakePostRequest(t, router, "/api/v1/projects/"+project.ID.String()+"/members", "owner",
		projects_dto.AddMemberRequestDTO{Username: "ghost", Role: users_enums.ProjectRoleMember}, http.StatusNotFound)
}

func Test_AddMember_WithOwnerRoleOrNoIdentity_ReturnsBadRequest(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	router, fixture := createProjectTestRouter(t, owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)
	url := "/api/v1/projects/" + project.ID.String() + "/members"

	test_utils.MakePostRequest(t, router, url, "owner",
		projects_dto.AddMemberRequestDTO{Username: "alice", Role: users_enums.ProjectRoleOwner}, http.StatusBadRequest)
	test_utils.MakePostRequest(t, router, url, "owner",
		projects_dto.AddMemberRequestDTO{Role: users_enums.ProjectRoleMember}, http.StatusBadRequest)
}

func Test_AddMember_AsProjectAdminGrantingAdmin_ReturnsForbidden(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	admin := users_testing.NewTestUser("admin")
	alice := users_testing.NewTestUser("alice")
	router, fixture := createProjectTestRouter(t, owner, admin, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleAdmin, admin)
	url := "/api/v1/projects/" + project.ID.String() + "/members"

	test_utils.MakePostRequest(t, router, url, "admin",
		projects_dto.AddMemberRequestDTO{Username: "alice", Role: users_enums.ProjectRoleAdmin}, http.StatusForbidden)
	test_utils.MakePostRequest(t, router, url, "admin",
		projects_dto.AddMemberRequestDTO{Username: "alice", Role: users_enums.ProjectRoleMember}, http.StatusOK)
}

func Test_ChangeMemberRole_WhenOwnerTargeted_ReturnsBadRequest(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	router, fixture := createProjectTestRouter(t, owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice)
	base := "/api/v1/projects/" + project.ID.String() + "/members/"

	test_utils.MakePutRequest(t, router, base+owner.ID.String()+"/role", "owner",
		projects_dto.ChangeMemberRoleRequestDTO{Role: users_enums.ProjectRoleViewer}, http.StatusBadRequest)

	test_utils.MakePutRequest(t, router, base+alice.ID.String()+"/role", "owner",
		projects_dto.ChangeMemberRoleRequestDTO{Role: users_enums.ProjectRoleViewer}, http.StatusOK)

	role, err := fixture.ProjectService.GetUserProjectRole(project.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, users_enums.ProjectRoleViewer, *role)
}

func Test_RemoveMember_WhenMemberLeaves_Succeeds(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	router, fixture := createProjectTestRouter(t, owner, alice, bob)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice, bob)
	base := "/api/v1/projects/" + project.ID.String() + "/members/"

	test_utils.MakeDeleteRequest(t, router, base+bob.ID.String(), "alice", http.StatusForbidden)
	test_utils.MakeDeleteRequest(t, router, base+alice.ID.String(), "alice", http.StatusOK)
	test_utils.MakeDeleteRequest(t, router, base+owner.ID.String(), "owner", http.StatusBadRequest)

	isMember, err := fixture.ProjectService.IsProjectMember(project.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}
