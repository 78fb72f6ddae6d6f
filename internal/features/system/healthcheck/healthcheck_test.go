package system_healthcheck

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	test_utils "untitledone/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CheckHealth_WhenAllChecksPass_ReturnsOk(t *testing.T) {
	router := createHealthcheckRouter(
		HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
		DiskCheck(t.TempDir(), 101),
	)

	var response HealthcheckResponse
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/system/health", "", http.StatusOK, &response)

	assert.Equal(t, "ok", response.Status)
}

func Test_CheckHealth_WhenCacheIsDown_ReturnsUnavailableNamingCheck(t *testing.T) {
	router := createHealthcheckRouter(
		HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "cache", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	response := test_utils.MakeGetRequest(t, router, "/api/v1/system/health", "", http.StatusServiceUnavailable)

	assert.Contains(t, string(response.Body), "cache is not available")
	assert.NotContains(t, string(response.Body), "connection refused")
}

func Test_IsHealthy_WithMissingDiskPath_ReturnsUnhealthy(t *testing.T) {
	service := NewHealthcheckService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		DiskCheck("/definitely/not/a/mounted/path", 101),
	)

	err := service.IsHealthy(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnhealthy)
}

func createHealthcheckRouter(checks ...HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	controller := &HealthcheckController{
		NewHealthcheckService(slog.New(slog.NewTextHandler(io.Discard, nil)), checks...),
	}
	controller.RegisterRoutes(router.Group("/api/v1"))

	return router
}
