// Package resource tracks background work such as asynchronous result saves
// and watches process memory, so shutdown can wait for pending writes.
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// Limits bound the manager. Zero values select defaults.
type Limits struct {
	MaxMemoryMB int64
	MaxTasks    int64
}

// Manager runs tracked background tasks and reports memory use.
type Manager struct {
	maxMemoryMB int64
	maxTasks    int64

	taskCount     atomic.Int64
	memoryUsageMB atomic.Int64
	started       atomic.Uint64
	panics        atomic.Uint64

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	logger *logging.Logger

	lastMemoryCheck atomic.Int64
}

// NewManager creates a manager with the given limits.
func NewManager(limits Limits, logger *logging.Logger) *Manager {
	if limits.MaxMemoryMB <= 0 {
		limits.MaxMemoryMB = 512
	}
	if limits.MaxTasks <= 0 {
		limits.MaxTasks = 64
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		maxMemoryMB: limits.MaxMemoryMB,
		maxTasks:    limits.MaxTasks,
		logger:      logger,
	}
}

// Go runs fn in a tracked goroutine. It fails when the task limit is
// reached or the manager is shutting down. Panics in fn are logged.
func (m *Manager) Go(ctx context.Context, name string, fn func(context.Context)) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("resource manager closed, task %q rejected", name)
	}
	if current := m.taskCount.Load(); current >= m.maxTasks {
		m.mu.Unlock()
		m.logger.Warn(ctx, "Task limit exceeded",
			"current", current,
			"limit", m.maxTasks,
			"name", name,
		)
		return fmt.Errorf("task limit exceeded: %d/%d", current, m.maxTasks)
	}
	m.taskCount.Add(1)
	m.wg.Add(1)
	m.mu.Unlock()

	m.started.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.taskCount.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				m.panics.Add(1)
				m.logger.Error(ctx, "Task panic", fmt.Errorf("panic: %v", r), "name", name)
			}
		}()
		fn(ctx)
	}()
	return nil
}

// Wait blocks until every task has finished or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		remaining := m.TaskCount()
		m.logger.Warn(ctx, "Timed out waiting for background tasks", "remaining", remaining)
		return fmt.Errorf("shutdown timeout: %d tasks still running: %w", remaining, ctx.Err())
	}
}

// Shutdown rejects new tasks and waits for running ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.logger.Info(ctx, "Shutting down background tasks", "running", m.TaskCount())
	return m.Wait(ctx)
}

// CheckMemoryUsage samples heap use and compares it to the limit.
func (m *Manager) CheckMemoryUsage() error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	currentMB := int64(stats.Alloc / 1024 / 1024)
	m.memoryUsageMB.Store(currentMB)
	m.lastMemoryCheck.Store(time.Now().UnixNano())

	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// TaskCount returns the number of running tasks.
func (m *Manager) TaskCount() int64 {
	return m.taskCount.Load()
}

// MemoryUsage returns the last sampled heap use in MB.
func (m *Manager) MemoryUsage() int64 {
	return m.memoryUsageMB.Load()
}

// Stats returns current usage.
func (m *Manager) Stats() Stats {
	var last time.Time
	if ns := m.lastMemoryCheck.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return Stats{
		TaskCount:       m.TaskCount(),
		MaxTasks:        m.maxTasks,
		TasksStarted:    m.started.Load(),
		TaskPanics:      m.panics.Load(),
		MemoryUsageMB:   m.MemoryUsage(),
		MaxMemoryMB:     m.maxMemoryMB,
		LastMemoryCheck: last,
	}
}

// Stats is a usage snapshot.
type Stats struct {
	TaskCount       int64     `json:"task_count"`
	MaxTasks        int64     `json:"max_tasks"`
	TasksStarted    uint64    `json:"tasks_started"`
	TaskPanics      uint64    `json:"task_panics"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}
