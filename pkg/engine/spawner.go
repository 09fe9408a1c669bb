package engine

import (
	"time"

	"github.com/opd-ai/go-starstrike/pkg/assets"
	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// spawnInterval is the enemy cadence for the current wave.
func (e *Engine) spawnInterval() time.Duration {
	return max(MinSpawnInterval, e.profile.EnemySpawnRate-time.Duration(e.session.wave)*SpawnWaveDiscount)
}

func (e *Engine) spawnEnemies(now time.Time) {
	if now.Sub(e.session.lastEnemySpawn) <= e.spawnInterval() {
		return
	}
	e.session.lastEnemySpawn = now

	enemy := e.newEnemy(now)
	e.enemies = append(e.enemies, enemy)

	eventType := event.EnemySpawned
	if enemy.Kind == entity.Boss {
		eventType = event.BossSpawned
	}
	e.bus.Publish(event.NewEnemyEvent(eventType, e, enemy, 0))
}

func (e *Engine) newEnemy(now time.Time) entity.Enemy {
	size, hp := float64(EnemySize), 1
	kind := entity.Basic
	sprites := e.profile.EnemySprites

	switch {
	case e.profile.IsBossWave(e.session.wave):
		size, hp = BossSize, BossHP
		kind = entity.Boss
		if len(e.profile.BossSprites) > 0 {
			sprites = e.profile.BossSprites
		}
	case e.profile.EnemyShootChance > 0:
		kind = entity.Shooter
	}

	return entity.Enemy{
		Body: entity.Body{
			ID:   e.ids.Next(),
			Rect: physics.NewRect(e.randomX(size), -size, size, size),
		},
		HP:            hp,
		MaxHP:         hp,
		Kind:          kind,
		Sprite:        e.pick(sprites),
		CanShoot:      kind != entity.Basic,
		LastShot:      now,
		ShootInterval: EnemyShootInterval,
		Frozen:        now.Before(e.session.frozenUntil),
		FrozenUntil:   e.session.frozenUntil,
	}
}

func (e *Engine) spawnMeteors(now time.Time) {
	if !e.profile.HasMeteors || now.Sub(e.session.lastMeteorSpawn) <= e.profile.MeteorSpawnRate {
		return
	}
	e.session.lastMeteorSpawn = now

	size := MeteorMinSize + e.rng.Float64()*(MeteorMaxSize-MeteorMinSize)
	meteor := entity.Meteor{
		Body: entity.Body{
			ID:   e.ids.Next(),
			Rect: physics.NewRect(e.randomX(size), -size, size, size),
		},
		Velocity:      physics.Vector2D{Y: MeteorMinSpeed + e.rng.Float64()*(MeteorMaxSpeed-MeteorMinSpeed)},
		RotationSpeed: (e.rng.Float64()*2 - 1) * MeteorMaxSpin,
		Sprite:        e.pick(assets.Meteors),
	}
	e.meteors = append(e.meteors, meteor)

	e.bus.Publish(&event.SpawnEvent{
		BaseEvent: event.BaseEvent{EventType: event.MeteorSpawned, Source: e},
		EntityID:  meteor.ID,
		X:         meteor.Rect.X,
		Y:         meteor.Rect.Y,
	})
}

// tryDrop rolls once for a power-up centred on at.
func (e *Engine) tryDrop(at physics.Vector2D) {
	if e.profile.PowerUpDropRate <= 0 || e.rng.Float64() >= e.profile.PowerUpDropRate {
		return
	}
	kind := entity.PowerUpKinds[e.rng.IntN(len(entity.PowerUpKinds))]
	p := entity.PowerUp{
		Body: entity.Body{
			ID:   e.ids.Next(),
			Rect: physics.NewRect(at.X-PowerUpSize/2, at.Y-PowerUpSize/2, PowerUpSize, PowerUpSize),
		},
		Kind:      kind,
		FallSpeed: PowerUpFallSpeed,
		Sprite:    powerUpSprite(kind),
	}
	e.powerUps = append(e.powerUps, p)
	e.bus.Publish(event.NewPowerUpEvent(event.PowerUpDropped, e, p))
}

func (e *Engine) enemyReturnFire(now time.Time) {
	chance := e.profile.EnemyShootChance
	if chance <= 0 {
		return
	}
	fired := 0
	for i := range e.enemies {
		enemy := &e.enemies[i]
		if !enemy.CanShoot || now.Sub(enemy.LastShot) <= enemy.ShootInterval {
			continue
		}
		if e.rng.Float64() >= chance {
			continue
		}
		enemy.LastShot = now
		e.bullets = append(e.bullets, entity.Bullet{
			Body: entity.Body{
				ID: e.ids.Next(),
				Rect: physics.NewRect(
					enemy.Rect.X+enemy.Rect.W/2-BulletWidth/2,
					enemy.Rect.Bottom(),
					BulletWidth, BulletHeight,
				),
			},
			Velocity: physics.Vector2D{Y: EnemyBulletSpeed},
			Damage:   1,
			Sprite:   e.profile.EnemyLaser,
		})
		fired++
	}
	if fired > 0 {
		e.bus.Publish(event.NewFireEvent(e, fired, false))
	}
}

func (e *Engine) randomX(size float64) float64 {
	span := e.width - size
	if span <= 0 {
		return 0
	}
	return e.rng.Float64() * span
}

func (e *Engine) pick(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[e.rng.IntN(len(keys))]
}

func powerUpSprite(kind entity.PowerUpKind) string {
	switch kind {
	case entity.TripleLaserPickup:
		return assets.PowerUpTripleLaser
	case entity.FreezePickup:
		return assets.PowerUpFreeze
	case entity.InvincibilityPickup:
		return assets.PowerUpInvincibility
	case entity.RapidFirePickup:
		return assets.PowerUpRapidFire
	case entity.ExtraLifePickup:
		return assets.PowerUpExtraLife
	default:
		return ""
	}
}
