package system_healthcheck

import (
	"context"
	"fmt"
	"sync"

	"untitledone/internal/cache"
	"untitledone/internal/config"
	"untitledone/internal/storage"
	cache_utils "untitledone/internal/util/cache"
	"untitledone/internal/util/logger"
)

const maxDiskUsedPercent = 95

var (
	healthcheckController *HealthcheckController
	healthcheckOnce       sync.Once
)

func GetHealthcheckController() *HealthcheckController {
	healthcheckOnce.Do(func() {
		service := NewHealthcheckService(
			logger.GetLogger(),
			HealthCheck{Name: "database", Check: pingDatabase},
			HealthCheck{Name: "cache", Check: func(ctx context.Context) error {
				return cache_utils.PingCache(ctx, cache.GetCache())
			}},
			DiskCheck(config.GetEnv().BackendRootPath, maxDiskUsedPercent),
		)

		healthcheckController = &HealthcheckController{service}
	})

	return healthcheckController
}

func pingDatabase(ctx context.Context) error {
	if err := storage.GetDb().WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}

	return nil
}
