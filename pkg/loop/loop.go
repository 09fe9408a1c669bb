// Package loop drives an engine at a fixed frame rate. Each frame reads one
// input snapshot, ticks the simulation and hands the frame to a renderer.
package loop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// Simulation is advanced once per frame.
type Simulation interface {
	Tick(now time.Time, in input.Snapshot)
}

// Config wires a Loop. Only Simulation and Input are required.
type Config struct {
	FPS        int
	Simulation Simulation
	Input      *input.State
	// Active gates the simulation. Frames still render while it returns false.
	Active func() bool
	// Render is called after every frame, ticked or not.
	Render func(now time.Time) error
	Logger *logging.Logger
	// Clock is used by Run. Tests may replace it.
	Clock func() time.Time
}

// Loop is a fixed-rate frame driver.
type Loop struct {
	cfg      Config
	interval time.Duration
	frames   atomic.Uint64
	ticks    atomic.Uint64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	once    sync.Once
}

// New validates cfg and returns a stopped loop.
func New(cfg Config) (*Loop, error) {
	if cfg.Simulation == nil || cfg.Input == nil {
		return nil, fmt.Errorf("loop requires a simulation and an input state")
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Loop{
		cfg:      cfg,
		interval: time.Second / time.Duration(cfg.FPS),
		stop:     make(chan struct{}),
	}, nil
}

// Interval returns the time between frames.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Frames returns how many frames have run, ticked or not.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Ticks returns how many frames advanced the simulation.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Step runs a single frame at now. Backends with their own frame callback
// call Step directly instead of Run. It reports whether the simulation ticked.
func (l *Loop) Step(now time.Time) bool {
	l.frames.Add(1)

	ticked := false
	if l.cfg.Active == nil || l.cfg.Active() {
		l.cfg.Simulation.Tick(now, l.cfg.Input.Snapshot(now))
		l.ticks.Add(1)
		ticked = true
	}

	if l.cfg.Render != nil {
		if err := l.cfg.Render(now); err != nil {
			l.cfg.Logger.Error(context.Background(), "Render failed", err,
				"frame", l.frames.Load(),
			)
		}
	}
	return ticked
}

// Run steps the loop on a ticker until ctx is cancelled or Stop is called.
// Ticks missed while a frame is running are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("loop already running")
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.cfg.Logger.Info(ctx, "Frame loop started",
		"fps", l.cfg.FPS,
		"interval", l.interval,
	)

	for {
		select {
		case <-ctx.Done():
			l.cfg.Logger.Info(ctx, "Frame loop stopping", "frames", l.Frames())
			return ctx.Err()
		case <-l.stop:
			l.cfg.Logger.Info(ctx, "Frame loop stopped", "frames", l.Frames())
			return nil
		case <-ticker.C:
			// Stop may race with a ready tick; it wins.
			select {
			case <-l.stop:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			l.Step(l.cfg.Clock())
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stop) })
}
