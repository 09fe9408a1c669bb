package engine

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

const frameStep = 16 * time.Millisecond

var base = time.Unix(1_700_000_000, 0)

// recordingHost counts every engine callback.
type recordingHost struct {
	mu      sync.Mutex
	score   int
	lives   int
	awards  []int
	damaged int
	gained  int
}

func (h *recordingHost) AddScore(points int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.score += points
	h.awards = append(h.awards, points)
}

func (h *recordingHost) TakeDamage() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.damaged++
	h.lives--
}

func (h *recordingHost) AddLife() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gained++
	h.lives++
}

func (h *recordingHost) Score() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.score
}

func (h *recordingHost) Lives() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lives
}

// quietProfile spawns nothing on its own so tests control every population.
func quietProfile() mission.Profile {
	p := mission.Get(1)
	p.EnemySpawnRate = time.Hour
	p.PowerUpDropRate = 0
	return p
}

func newTestEngine(t *testing.T, p mission.Profile) (*Engine, *recordingHost, *event.Bus) {
	t.Helper()
	host := &recordingHost{lives: 3}
	bus := event.NewEventBus()
	e := New(p, host, Options{
		Rand: rand.New(rand.NewPCG(1, 2)),
		Bus:  bus,
	})
	e.session.lastEnemySpawn = base
	e.session.lastMeteorSpawn = base
	return e, host, bus
}

// countEvents tallies published events by type.
func countEvents(bus *event.Bus, types ...event.Type) map[event.Type]int {
	counts := make(map[event.Type]int)
	var mu sync.Mutex
	for _, typ := range types {
		bus.Subscribe(typ, func(ev event.Event) {
			mu.Lock()
			defer mu.Unlock()
			counts[ev.GetType()]++
		})
	}
	return counts
}

func run(e *Engine, frames int, in input.Snapshot) time.Time {
	now := base
	for i := 0; i < frames; i++ {
		now = now.Add(frameStep)
		e.Tick(now, in)
	}
	return now
}

func TestNew_InitialState(t *testing.T) {
	e, _, _ := newTestEngine(t, mission.Get(1))

	if e.Wave() != 1 {
		t.Errorf("Wave() = %d, want 1", e.Wave())
	}
	w, h := e.Bounds()
	if w != DefaultWidth || h != DefaultHeight {
		t.Errorf("Bounds() = %vx%v, want %dx%d", w, h, DefaultWidth, DefaultHeight)
	}

	f := e.Frame()
	want := physics.NewRect(DefaultWidth/2-PlayerSize/2, DefaultHeight-PlayerBottomInset, PlayerSize, PlayerSize)
	if f.Player.Rect != want {
		t.Errorf("player rect = %+v, want %+v", f.Player.Rect, want)
	}
	if f.Player.Sprite != mission.Get(1).PlayerShip {
		t.Errorf("player sprite = %q", f.Player.Sprite)
	}
	if f.Lives != 3 || f.Score != 0 {
		t.Errorf("frame lives/score = %d/%d, want 3/0", f.Lives, f.Score)
	}
}

func TestNew_NilHost_UsesLocalHost(t *testing.T) {
	e := New(mission.Get(1), nil, Options{Rand: rand.New(rand.NewPCG(3, 4))})
	if got := e.Frame().Lives; got != 3 {
		t.Errorf("Lives = %d, want 3", got)
	}
}

func TestTick_PlayerStaysInsideArena(t *testing.T) {
	tests := []struct {
		name string
		in   input.Snapshot
	}{
		{"hold_left", input.Snapshot{Direction: physics.Direction{Left: true}}},
		{"hold_right", input.Snapshot{Direction: physics.Direction{Right: true}}},
		{"hold_up_left", input.Snapshot{Direction: physics.Direction{Up: true, Left: true}}},
		{"hold_down_right", input.Snapshot{Direction: physics.Direction{Down: true, Right: true}}},
		{"huge_drag", input.Snapshot{Drag: physics.Vector2D{X: -5000, Y: 9000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, quietProfile())
			now := base
			for i := 0; i < 300; i++ {
				now = now.Add(frameStep)
				e.Tick(now, tt.in)
				r := e.Frame().Player.Rect
				if r.X < 0 || r.Y < 0 || r.Right() > DefaultWidth || r.Bottom() > DefaultHeight {
					t.Fatalf("frame %d: player %+v left the arena", i, r)
				}
			}
		})
	}
}

func TestTick_MovesByPlayerSpeed(t *testing.T) {
	e, _, _ := newTestEngine(t, quietProfile())
	start := e.Frame().Player.Rect

	e.Tick(base.Add(frameStep), input.Snapshot{Direction: physics.Direction{Left: true}})

	got := e.Frame().Player
	if got.Rect.X != start.X-PlayerSpeed {
		t.Errorf("X = %v, want %v", got.Rect.X, start.X-PlayerSpeed)
	}
	if got.Velocity.X != -PlayerSpeed {
		t.Errorf("Velocity.X = %v, want %v", got.Velocity.X, -PlayerSpeed)
	}
}

func TestResize_ReclampsPlayer(t *testing.T) {
	e, _, _ := newTestEngine(t, quietProfile())
	run(e, 200, input.Snapshot{Direction: physics.Direction{Right: true, Down: true}})

	e.Resize(300, 200)

	r := e.Frame().Player.Rect
	if r.Right() > 300 || r.Bottom() > 200 || r.X < 0 || r.Y < 0 {
		t.Errorf("player %+v outside resized arena", r)
	}
	if w, h := e.Bounds(); w != 300 || h != 200 {
		t.Errorf("Bounds() = %vx%v, want 300x200", w, h)
	}

	e.Resize(0, -1)
	if w, h := e.Bounds(); w != 300 || h != 200 {
		t.Errorf("invalid resize changed bounds to %vx%v", w, h)
	}
}

func TestTick_WaveAdvancesEvery600Frames(t *testing.T) {
	e, _, bus := newTestEngine(t, quietProfile())
	counts := countEvents(bus, event.WaveAdvanced)

	run(e, FramesPerWave-1, input.Snapshot{})
	if e.Wave() != 1 {
		t.Fatalf("wave advanced early to %d", e.Wave())
	}
	e.Tick(base.Add(FramesPerWave*frameStep), input.Snapshot{})
	if e.Wave() != 2 {
		t.Errorf("Wave() = %d after %d frames, want 2", e.Wave(), FramesPerWave)
	}
	if counts[event.WaveAdvanced] != 1 {
		t.Errorf("WaveAdvanced published %d times, want 1", counts[event.WaveAdvanced])
	}
	if e.Frame().Wave != e.Wave() {
		t.Error("frame wave differs from engine wave")
	}
}

func TestReset_RestartsSession(t *testing.T) {
	e, _, _ := newTestEngine(t, mission.Get(2))
	run(e, FramesPerWave+10, input.Snapshot{})

	e.Reset()

	f := e.Frame()
	if f.Wave != 1 || f.Number != 0 {
		t.Errorf("after reset wave=%d frame=%d, want 1 and 0", f.Wave, f.Number)
	}
	if len(f.Bullets)+len(f.Enemies)+len(f.Meteors)+len(f.PowerUps) != 0 {
		t.Error("populations not cleared")
	}
}

func TestFrame_IsACopy(t *testing.T) {
	e, _, _ := newTestEngine(t, quietProfile())
	e.enemies = append(e.enemies, entity.Enemy{Body: entity.Body{ID: 99, Rect: physics.NewRect(10, 10, 40, 40)}, HP: 1, MaxHP: 1})

	f := e.Frame()
	f.Enemies[0].Rect.X = 500

	if e.enemies[0].Rect.X != 10 {
		t.Error("mutating a frame changed engine state")
	}
}
