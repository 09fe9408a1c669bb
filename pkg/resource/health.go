package resource

import (
	"context"
	"fmt"
)

// HealthCheck reports unhealthy when memory is over the limit or the task
// pool is nearly full.
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck creates a health check for manager.
func NewHealthCheck(manager *Manager) *HealthCheck {
	return &HealthCheck{manager: manager}
}

// Name returns the name of this health check.
func (r *HealthCheck) Name() string {
	return "resource"
}

// Check samples memory and inspects the task count.
func (r *HealthCheck) Check(ctx context.Context) error {
	if err := r.manager.CheckMemoryUsage(); err != nil {
		return err
	}

	stats := r.manager.Stats()
	threshold := int64(float64(stats.MaxTasks) * 0.8)
	if stats.TaskCount > threshold {
		return fmt.Errorf("task count %d exceeds 80%% threshold (%d/%d)",
			stats.TaskCount, threshold, stats.MaxTasks)
	}
	return nil
}
