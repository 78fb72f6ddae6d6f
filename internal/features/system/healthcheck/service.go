package system_healthcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
)

const checkTimeout = 5 * time.Second

var ErrUnhealthy = errors.New("service is unhealthy")

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthcheckService struct {
	checks []HealthCheck
	logger *slog.Logger
}

func NewHealthcheckService(logger *slog.Logger, checks ...HealthCheck) *HealthcheckService {
	return &HealthcheckService{checks: checks, logger: logger}
}

// IsHealthy runs every check and returns the name of the first failing one
// wrapped in ErrUnhealthy.
func (s *HealthcheckService) IsHealthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("healthcheck failed", "check", check.Name, "error", err)
			return fmt.Errorf("%w: %s is not available", ErrUnhealthy, check.Name)
		}
	}

	return nil
}

// DiskCheck fails once the filesystem holding path is at least maxUsedPercent full.
func DiskCheck(path string, maxUsedPercent float64) HealthCheck {
	return HealthCheck{
		Name: "disk",
		Check: func(ctx context.Context) error {
			usage, err := disk.UsageWithContext(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to read disk usage: %w", err)
			}

			if usage.UsedPercent >= maxUsedPercent {
				return fmt.Errorf("disk usage %.1f%% exceeds %.1f%%", usage.UsedPercent, maxUsedPercent)
			}

			return nil
		},
	}
}
