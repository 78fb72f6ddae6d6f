package audit_logs

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	user_enums "untitledone/internal/features/users/enums"
	user_models "untitledone/internal/features/users/models"
	users_testing "untitledone/internal/features/users/testing"
	test_utils "untitledone/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GetProjectAuditLogs_WithMixedProjects_ReturnsOnlyThatProject(t *testing.T) {
	service, _ := newTestService()
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	albumID, demoID := uuid.New(), uuid.New()

	service.WriteAuditLog("Comment added to album", &alice.ID, &albumID)
	service.WriteAuditLog("Share link redeemed on album", &bob.ID, &albumID)
	service.WriteAuditLog("Comment added to demo", &alice.ID, &demoID)
	service.WriteAuditLog("Password changed", &alice.ID, nil)

	response, err := service.GetProjectAuditLogs(albumID, &GetAuditLogsRequest{Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"Comment added to album", "Share link redeemed on album"},
		extractMessages(response.AuditLogs))
	assert.False(t, response.HasMore)
	assert.Nil(t, response.Total)
}

func Test_GetProjectAuditLogs_WhenMoreThanOnePage_PagesBackwardsWithBefore(t *testing.T) {
	service, _ := newTestService()
	projectID := uuid.New()

	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, message := range []string{"first", "second", "third"} {
		at := start.Add(time.Duration(i) * time.Minute)
		service.now = func() time.Time { return at }
		service.WriteAuditLog(message, nil, &projectID)
	}

	firstPage, err := service.GetProjectAuditLogs(projectID, &GetAuditLogsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second"}, extractMessages(firstPage.AuditLogs))
	assert.True(t, firstPage.HasMore)

	cursor := firstPage.AuditLogs[len(firstPage.AuditLogs)-1].CreatedAt
	secondPage, err := service.GetProjectAuditLogs(projectID, &GetAuditLogsRequest{Limit: 2, Before: &cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, extractMessages(secondPage.AuditLogs))
	assert.False(t, secondPage.HasMore)
}

func Test_GetProjectAuditLogs_WithOutOfRangeLimit_UsesDefaultPageSize(t *testing.T) {
	service, _ := newTestService()

	response, err := service.GetProjectAuditLogs(uuid.New(), &GetAuditLogsRequest{Limit: maxPageSize + 1})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, response.Limit)
	assert.Empty(t, response.AuditLogs)
}

func Test_WriteAuditLog_WhenStoreFails_DoesNotPanicOrPropagate(t *testing.T) {
	store := &inMemoryAuditLogStore{createErr: errors.New("db is down")}
	service := NewAuditLogService(store, slog.Default())

	assert.NotPanics(t, func() {
		service.WriteAuditLog("Share link created", nil, nil)
	})
	assert.Empty(t, store.logs)
}

func Test_GetUserAuditLogs_WhenOtherMemberAsks_ReturnsForbidden(t *testing.T) {
	service, _ := newTestService()
	owner := users_testing.NewTestUser("owner")
	stranger := users_testing.NewTestUser("stranger")
	service.WriteAuditLog("Project created", &owner.ID, nil)

	_, err := service.GetUserAuditLogs(owner.ID, stranger, &GetAuditLogsRequest{})
	assert.ErrorIs(t, err, ErrUserLogsForbidden)

	own, err := service.GetUserAuditLogs(owner.ID, owner, &GetAuditLogsRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Project created"}, extractMessages(own.AuditLogs))
}

func Test_AuditLogRoutes_WithDifferentUserRoles_EnforcesPermissions(t *testing.T) {
	service, _ := newTestService()
	admin := users_testing.NewTestUser("admin_user")
	admin.Role = user_enums.UserRoleAdmin
	member := users_testing.NewTestUser("member_user")

	service.WriteAuditLog("Standalone log", nil, nil)
	service.WriteAuditLog("Member signed in", &member.ID, nil)

	router := createRouter(service, map[string]*user_models.User{"admin": admin, "member": member})

	var global GetAuditLogsResponse
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/audit-logs/global?limit=100", "admin", http.StatusOK, &global)
	assert.Contains(t, extractMessages(global.AuditLogs), "Standalone log")
	require.NotNil(t, global.Total)
	assert.Equal(t, int64(2), *global.Total)

	resp := test_utils.MakeGetRequest(t, router, "/api/v1/audit-logs/global", "member", http.StatusForbidden)
	assert.Contains(t, string(resp.Body), "only administrators")

	var mine GetAuditLogsResponse
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/audit-logs/me", "member", http.StatusOK, &mine)
	assert.Equal(t, []string{"Member signed in"}, extractMessages(mine.AuditLogs))

	test_utils.MakeGetRequest(t, router, "/api/v1/audit-logs/me", "", http.StatusUnauthorized)
	test_utils.MakeGetRequest(t, router, "/api/v1/audit-logs/users/not-a-uuid", "member", http.StatusBadRequest)
	test_utils.MakeGetRequest(t, router, "/api/v1/audit-logs/users/"+admin.ID.String(), "member", http.StatusForbidden)
	test_utils.MakeGetRequest(t, router, "/api/v1/audit-logs/users/"+member.ID.String(), "admin", http.StatusOK)
}

func newTestService() (*AuditLogService, *inMemoryAuditLogStore) {
	store := &inMemoryAuditLogStore{}
	return NewAuditLogService(store, slog.Default()), store
}

// the Authorization header carries a key into users
func createRouter(service *AuditLogService, users map[string]*user_models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	v1.Use(func(ctx *gin.Context) {
		if user, ok := users[ctx.GetHeader("Authorization")]; ok {
			ctx.Set("user", user)
		}
		ctx.Next()
	})

	(&AuditLogController{auditLogService: service}).RegisterRoutes(v1)

	return router
}

func extractMessages(entries []*AuditLogEntryDTO) []string {
	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, entry.Message)
	}

	return messages
}

type inMemoryAuditLogStore struct {
	mu        sync.Mutex
	logs      []*AuditLog
	createErr error
}

func (s *inMemoryAuditLogStore) Create(auditLog *AuditLog) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	auditLog.ID = uuid.New()
	s.logs = append(s.logs, auditLog)
	return nil
}

func (s *inMemoryAuditLogStore) List(filter AuditLogFilter, limit int) ([]*AuditLogEntryDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*AuditLogEntryDTO, 0)
	for _, log := range s.logs {
		if !filter.Matches(log) {
			continue
		}

		entries = append(entries, &AuditLogEntryDTO{
			ID:        log.ID,
			ActorID:   log.ActorID,
			ProjectID: log.ProjectID,
			Message:   log.Message,
			CreatedAt: log.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries[:min(len(entries), limit)], nil
}

func (s *inMemoryAuditLogStore) Count(filter AuditLogFilter) (int64, error) {
	entries, err := s.List(filter, len(s.logs))
	return int64(len(entries)), err
}
