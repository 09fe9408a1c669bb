// Package engine runs the arcade simulation: player movement and auto-fire,
// spawning, population updates, collision resolution and timed power-ups.
// An Engine is driven by one goroutine calling Tick once per frame.
package engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Host owns the player's score and lives. The engine reports gameplay
// outcomes to it and never decides when the game is over.
type Host interface {
	AddScore(points int)
	TakeDamage()
	AddLife()
	Score() int
	Lives() int
}

// Options configures a new Engine. Zero values select defaults.
type Options struct {
	Width, Height float64
	Rand          *rand.Rand
	Bus           *event.Bus
	Logger        *logging.Logger
}

// Engine is the combat simulation for one mission.
type Engine struct {
	mu sync.RWMutex

	profile mission.Profile
	host    Host
	bus     *event.Bus
	log     *logging.Logger
	rng     *rand.Rand
	ids     entity.IDGenerator

	width, height float64

	player   *entity.Player
	bullets  []entity.Bullet
	enemies  []entity.Enemy
	meteors  []entity.Meteor
	powerUps []entity.PowerUp

	session session
	now     time.Time
}

// session is the per-run counters recreated by New and Reset.
type session struct {
	wave            int
	frame           uint64
	frozenUntil     time.Time
	lastEnemySpawn  time.Time
	lastMeteorSpawn time.Time
}

// New creates an engine for profile reporting to host. A nil host is
// replaced by a LocalHost with three lives.
func New(profile mission.Profile, host Host, opts Options) *Engine {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if host == nil {
		host = NewLocalHost(3)
	}

	e := &Engine{
		profile: profile,
		host:    host,
		bus:     opts.Bus,
		log:     opts.Logger,
		rng:     opts.Rand,
		width:   opts.Width,
		height:  opts.Height,
	}
	e.reset()
	return e
}

// Reset clears every population and restarts the session at wave 1.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.player = entity.NewPlayer(e.ids.Next(), e.spawnRect(), e.profile.PlayerShip)
	e.bullets = nil
	e.enemies = nil
	e.meteors = nil
	e.powerUps = nil
	e.session = session{wave: 1}
	e.now = time.Time{}

	e.log.Debug(context.Background(), "Engine reset",
		"mission", e.profile.ID,
		"width", e.width,
		"height", e.height,
	)
}

func (e *Engine) spawnRect() physics.Rect {
	r := physics.NewRect(
		e.width/2-PlayerSize/2,
		e.height-PlayerBottomInset,
		PlayerSize,
		PlayerSize,
	)
	return r.ClampInside(e.width, e.height)
}

// Profile returns the mission this engine runs.
func (e *Engine) Profile() mission.Profile {
	return e.profile
}

// Wave returns the current wave, starting at 1.
func (e *Engine) Wave() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.wave
}

// Bounds returns the arena size.
func (e *Engine) Bounds() (width, height float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.width, e.height
}

// Resize changes the arena size and pulls the player back inside it.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width, e.height = width, height
	e.player.Rect = e.player.Rect.ClampInside(width, height)
}

// Tick advances the simulation by one frame. Bus handlers run inside Tick
// and must not call back into the engine.
func (e *Engine) Tick(now time.Time, in input.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.now = now
	e.expireEffects(now)
	e.advanceWave()
	e.movePlayer(in)
	e.autoFire()
	e.spawnEnemies(now)
	e.spawnMeteors(now)
	e.enemyReturnFire(now)
	e.advanceBullets()
	e.advanceEnemies(now)
	e.advanceMeteors()
	e.advancePowerUps()
	e.dropEscapedEnemies()
	e.resolveCollisions(now)
}

func (e *Engine) advanceWave() {
	e.session.frame++
	if e.session.frame%FramesPerWave != 0 {
		return
	}
	e.session.wave++
	e.log.Info(context.Background(), "Wave advanced",
		"mission", e.profile.ID,
		"wave", e.session.wave,
	)
	e.bus.Publish(&event.WaveEvent{
		BaseEvent: event.BaseEvent{EventType: event.WaveAdvanced, Source: e},
		Wave:      e.session.wave,
	})
}
