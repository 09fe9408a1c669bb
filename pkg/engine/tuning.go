package engine

import "time"

// Arena defaults.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Player tunables. Speeds are in pixels per frame.
const (
	PlayerSize        = 40
	PlayerBottomInset = 50
	PlayerSpeed       = 5

	FireInterval      = 12
	RapidFireInterval = 6

	BulletWidth       = 4
	BulletHeight      = 10
	PlayerBulletSpeed = 10
	TripleSpread      = 10
	TripleDrift       = 1
)

// Enemy tunables.
const (
	EnemySize          = 40
	BossSize           = 80
	BossHP             = 10
	BossPoints         = 500
	EnemyPoints        = 100
	EnemyBulletSpeed   = 5
	EnemyShootInterval = 2 * time.Second

	MinSpawnInterval  = 500 * time.Millisecond
	SpawnWaveDiscount = 50 * time.Millisecond
)

// Meteor tunables.
const (
	MeteorMinSize       = 30
	MeteorMaxSize       = 70
	MeteorMinSpeed      = 2
	MeteorMaxSpeed      = 4
	MeteorMaxSpin       = 0.05
	MeteorDespawnMargin = 100
)

// Power-up tunables.
const (
	PowerUpSize      = 30
	PowerUpFallSpeed = 1.5

	TripleLaserDuration   = 5 * time.Second
	RapidFireDuration     = 5 * time.Second
	InvincibilityDuration = 3 * time.Second
	FreezeDuration        = 2 * time.Second
)

// DespawnMargin is how far past the top or bottom edge bullets, enemies and
// power-ups may travel before they are dropped.
const DespawnMargin = 50

// FramesPerWave is how many frames each wave lasts.
const FramesPerWave = 600
