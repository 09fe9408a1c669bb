package engine

import "sync"

// LocalHost keeps score and lives in memory. Headless runs use it when no
// session controller is attached.
type LocalHost struct {
	mu    sync.Mutex
	score int
	lives int
}

// NewLocalHost creates a host starting with lives.
func NewLocalHost(lives int) *LocalHost {
	return &LocalHost{lives: lives}
}

// AddScore implements Host.
func (h *LocalHost) AddScore(points int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.score += points
}

// TakeDamage implements Host. Lives never go below zero.
func (h *LocalHost) TakeDamage() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lives > 0 {
		h.lives--
	}
}

// AddLife implements Host.
func (h *LocalHost) AddLife() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lives++
}

// Score implements Host.
func (h *LocalHost) Score() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.score
}

// Lives implements Host.
func (h *LocalHost) Lives() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lives
}
