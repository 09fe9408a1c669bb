package engine

import (
	"testing"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/mission"
)

func TestSpawnInterval_FloorsAt500ms(t *testing.T) {
	tests := []struct {
		name    string
		rate    time.Duration
		wave    int
		want    time.Duration
	}{
		{"wave_1", 2500 * time.Millisecond, 1, 2450 * time.Millisecond},
		{"wave_10", 2500 * time.Millisecond, 10, 2000 * time.Millisecond},
		{"floor", 1200 * time.Millisecond, 30, MinSpawnInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, quietProfile())
			e.profile.EnemySpawnRate = tt.rate
			e.session.wave = tt.wave
			if got := e.spawnInterval(); got != tt.want {
				t.Errorf("spawnInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpawnEnemies_RegularTier(t *testing.T) {
	tests := []struct {
		missionID int
		wantKind  entity.EnemyKind
	}{
		{1, entity.Basic},
		{2, entity.Shooter},
		{3, entity.Shooter},
	}
	for _, tt := range tests {
		t.Run(mission.Get(tt.missionID).Name, func(t *testing.T) {
			e, _, bus := newTestEngine(t, mission.Get(tt.missionID))
			counts := countEvents(bus, event.EnemySpawned, event.BossSpawned)
			e.session.lastEnemySpawn = time.Time{}

			e.spawnEnemies(base)

			if len(e.enemies) != 1 {
				t.Fatalf("spawned %d enemies, want 1", len(e.enemies))
			}
			enemy := e.enemies[0]
			if enemy.HP != 1 || enemy.MaxHP != 1 {
				t.Errorf("HP/MaxHP = %d/%d, want 1/1", enemy.HP, enemy.MaxHP)
			}
			if enemy.Rect.W != EnemySize || enemy.Rect.Y != -EnemySize {
				t.Errorf("rect = %+v", enemy.Rect)
			}
			if enemy.Rect.X < 0 || enemy.Rect.Right() > DefaultWidth {
				t.Errorf("spawned outside arena at x=%v", enemy.Rect.X)
			}
			if enemy.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", enemy.Kind, tt.wantKind)
			}
			if counts[event.EnemySpawned] != 1 || counts[event.BossSpawned] != 0 {
				t.Errorf("events = %v", counts)
			}

			// A second call inside the interval does nothing.
			e.spawnEnemies(base.Add(100 * time.Millisecond))
			if len(e.enemies) != 1 {
				t.Error("spawned again inside the interval")
			}
		})
	}
}

func TestSpawnEnemies_BossWave(t *testing.T) {
	e, _, bus := newTestEngine(t, mission.Get(3))
	counts := countEvents(bus, event.BossSpawned)
	e.session.wave = 5
	e.session.lastEnemySpawn = time.Time{}

	e.spawnEnemies(base)

	if len(e.enemies) != 1 {
		t.Fatalf("spawned %d enemies, want 1", len(e.enemies))
	}
	boss := e.enemies[0]
	if boss.Kind != entity.Boss || boss.HP != BossHP || boss.MaxHP != BossHP {
		t.Errorf("boss = kind %v HP %d/%d", boss.Kind, boss.HP, boss.MaxHP)
	}
	if boss.Rect.W != BossSize || boss.Rect.H != BossSize {
		t.Errorf("boss size = %vx%v, want %d", boss.Rect.W, boss.Rect.H, BossSize)
	}
	if !boss.CanShoot {
		t.Error("boss cannot shoot")
	}
	found := false
	for _, s := range mission.Get(3).BossSprites {
		found = found || s == boss.Sprite
	}
	if !found {
		t.Errorf("boss sprite %q not from boss set", boss.Sprite)
	}
	if counts[event.BossSpawned] != 1 {
		t.Errorf("BossSpawned = %d, want 1", counts[event.BossSpawned])
	}
}

func TestSpawnMeteors_Ranges(t *testing.T) {
	e, _, _ := newTestEngine(t, mission.Get(2))
	now := base
	for i := 0; i < 40; i++ {
		now = now.Add(mission.Get(2).MeteorSpawnRate + time.Millisecond)
		e.spawnMeteors(now)
	}
	if len(e.meteors) != 40 {
		t.Fatalf("spawned %d meteors, want 40", len(e.meteors))
	}
	for _, m := range e.meteors {
		if m.Rect.W < MeteorMinSize || m.Rect.W > MeteorMaxSize {
			t.Errorf("meteor size %v out of range", m.Rect.W)
		}
		if m.Velocity.Y < MeteorMinSpeed || m.Velocity.Y >= MeteorMaxSpeed {
			t.Errorf("meteor speed %v out of range", m.Velocity.Y)
		}
		if m.RotationSpeed < -MeteorMaxSpin || m.RotationSpeed >= MeteorMaxSpin {
			t.Errorf("meteor spin %v out of range", m.RotationSpeed)
		}
		if m.Sprite == "" {
			t.Error("meteor without sprite")
		}
	}
}

func TestSpawnMeteors_DisabledWithoutMeteors(t *testing.T) {
	e, _, _ := newTestEngine(t, mission.Get(1))
	e.spawnMeteors(base.Add(time.Hour))
	if len(e.meteors) != 0 {
		t.Error("mission without meteors spawned one")
	}
}

func TestEnemyReturnFire_CertainChance(t *testing.T) {
	e, _, bus := newTestEngine(t, quietProfile())
	counts := countEvents(bus, event.EnemyFired)
	e.profile.EnemyShootChance = 1
	e.profile.EnemyLaser = "lasers/test.png"

	shooter := enemyAt(1, 100, 100, entity.Shooter, 1)
	shooter.CanShoot = true
	shooter.LastShot = base
	e.enemies = []entity.Enemy{shooter, enemyAt(2, 300, 100, entity.Basic, 1)}

	e.enemyReturnFire(base.Add(time.Second))
	if len(e.bullets) != 0 {
		t.Fatal("fired before the shoot interval")
	}

	now := base.Add(EnemyShootInterval + time.Millisecond)
	e.enemyReturnFire(now)

	if len(e.bullets) != 1 {
		t.Fatalf("bullets = %d, want 1", len(e.bullets))
	}
	b := e.bullets[0]
	if b.FromPlayer || b.Velocity.Y != EnemyBulletSpeed || b.Sprite != "lasers/test.png" {
		t.Errorf("unexpected bullet %+v", b)
	}
	if b.Rect.Y != 140 || b.Rect.X != 100+EnemySize/2-BulletWidth/2 {
		t.Errorf("bullet at %v,%v, want bottom-centre", b.Rect.X, b.Rect.Y)
	}
	if !e.enemies[0].LastShot.Equal(now) {
		t.Error("LastShot not reset")
	}
	if counts[event.EnemyFired] != 1 {
		t.Errorf("EnemyFired = %d, want 1", counts[event.EnemyFired])
	}
}

func TestTick_MissionOneNeverFiresBack(t *testing.T) {
	e, _, _ := newTestEngine(t, mission.Get(1))
	now := base
	for i := 0; i < 3*FramesPerWave; i++ {
		now = now.Add(frameStep)
		e.Tick(now, input.Snapshot{})
		for _, b := range e.bullets {
			if !b.FromPlayer {
				t.Fatalf("frame %d: enemy bullet created on mission 1", i)
			}
		}
	}
}

func TestTryDrop_CertainRate(t *testing.T) {
	e, _, bus := newTestEngine(t, quietProfile())
	counts := countEvents(bus, event.PowerUpDropped)
	e.profile.PowerUpDropRate = 1

	e.tryDrop(e.player.Rect.Center())

	if len(e.powerUps) != 1 {
		t.Fatalf("power-ups = %d, want 1", len(e.powerUps))
	}
	p := e.powerUps[0]
	if p.Rect.W != PowerUpSize || p.FallSpeed != PowerUpFallSpeed || p.Sprite == "" {
		t.Errorf("unexpected power-up %+v", p)
	}
	if counts[event.PowerUpDropped] != 1 {
		t.Errorf("PowerUpDropped = %d, want 1", counts[event.PowerUpDropped])
	}
}
