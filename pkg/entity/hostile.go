package entity

import (
	"time"

	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// EnemyKind is the tier of an enemy.
type EnemyKind int

// Enemy tiers
const (
	Basic EnemyKind = iota
	Shooter
	Boss
)

func (k EnemyKind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Shooter:
		return "shooter"
	case Boss:
		return "boss"
	default:
		return "unknown"
	}
}

// Enemy descends from the top of the arena and may return fire.
type Enemy struct {
	Body
	HP            int
	MaxHP         int
	Kind          EnemyKind
	Sprite        string
	CanShoot      bool
	LastShot      time.Time
	ShootInterval time.Duration
	Frozen        bool
	FrozenUntil   time.Time
}

// Alive reports whether the enemy still has hit points.
func (e *Enemy) Alive() bool {
	return e.HP > 0
}

// HealthFraction returns HP/MaxHP in [0,1].
func (e *Enemy) HealthFraction() float64 {
	if e.MaxHP <= 0 || e.HP <= 0 {
		return 0
	}
	return float64(e.HP) / float64(e.MaxHP)
}

// Meteor is an indestructible falling hazard. Any contact with the player
// damages the player and removes the meteor.
type Meteor struct {
	Body
	Velocity      physics.Vector2D
	Rotation      float64
	RotationSpeed float64
	Sprite        string
}
