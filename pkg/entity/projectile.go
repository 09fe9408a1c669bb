package entity

import "github.com/opd-ai/go-starstrike/pkg/physics"

// Bullet is a projectile. FromPlayer decides what it can hit: player bullets
// only hit enemies, enemy bullets only hit the player.
type Bullet struct {
	Body
	Velocity   physics.Vector2D
	FromPlayer bool
	Damage     int
	Sprite     string
}
