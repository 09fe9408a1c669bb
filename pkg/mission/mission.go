// Package mission holds the static mission profiles that parameterize a
// play session: sprite sets, enemy speed and cadence, hazards, and drop rates.
package mission

import (
	"slices"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/assets"
)

// DefaultID is the mission used when an unknown id is requested.
const DefaultID = 1

// Profile is an immutable set of tunables for one mission.
type Profile struct {
	ID   int
	Name string

	PlayerShip   string
	PlayerLaser  string
	EnemySprites []string
	BossSprites  []string
	EnemyLaser   string

	// EnemySpeed is in pixels per frame.
	EnemySpeed       float64
	EnemySpawnRate   time.Duration
	EnemyShootChance float64

	HasMeteors      bool
	MeteorSpawnRate time.Duration

	HasBoss          bool
	BossWaveInterval int

	PowerUpDropRate   float64
	WaveSpeedIncrease float64
}

var profiles = map[int]Profile{
	1: {
		ID:                1,
		Name:              "Nebula Run",
		PlayerShip:        assets.ShipBlue,
		PlayerLaser:       assets.LaserBlue,
		EnemySprites:      assets.EnemiesBlue,
		BossSprites:       assets.EnemiesBlack,
		EnemyLaser:        assets.LaserBlue,
		EnemySpeed:        1.5,
		EnemySpawnRate:    2500 * time.Millisecond,
		EnemyShootChance:  0,
		PowerUpDropRate:   0.30,
		WaveSpeedIncrease: 0.1,
	},
	2: {
		ID:                2,
		Name:              "Meteor Storm",
		PlayerShip:        assets.ShipGreen,
		PlayerLaser:       assets.LaserGreen,
		EnemySprites:      assets.EnemiesGreen,
		BossSprites:       assets.EnemiesBlack,
		EnemyLaser:        assets.LaserGreen,
		EnemySpeed:        2.0,
		EnemySpawnRate:    1800 * time.Millisecond,
		EnemyShootChance:  0.1,
		HasMeteors:        true,
		MeteorSpawnRate:   3000 * time.Millisecond,
		PowerUpDropRate:   0.25,
		WaveSpeedIncrease: 0.15,
	},
	3: {
		ID:                3,
		Name:              "Pirate Ambush",
		PlayerShip:        assets.ShipOrange,
		PlayerLaser:       assets.LaserRed,
		EnemySprites:      assets.EnemiesRed,
		BossSprites:       assets.EnemiesBlack,
		EnemyLaser:        assets.LaserRed,
		EnemySpeed:        2.5,
		EnemySpawnRate:    1200 * time.Millisecond,
		EnemyShootChance:  0.3,
		HasBoss:           true,
		BossWaveInterval:  5,
		PowerUpDropRate:   0.20,
		WaveSpeedIncrease: 0.2,
	},
}

// Get returns the profile for id, falling back to DefaultID.
func Get(id int) Profile {
	p, ok := profiles[id]
	if !ok {
		p = profiles[DefaultID]
	}
	return p.clone()
}

// clone copies the sprite lists so callers cannot edit the table.
func (p Profile) clone() Profile {
	p.EnemySprites = slices.Clone(p.EnemySprites)
	p.BossSprites = slices.Clone(p.BossSprites)
	return p
}

// Exists reports whether id names a defined mission.
func Exists(id int) bool {
	_, ok := profiles[id]
	return ok
}

// All returns every profile ordered by id.
func All() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.clone())
	}
	slices.SortFunc(out, func(a, b Profile) int { return a.ID - b.ID })
	return out
}

// IsBossWave reports whether enemies spawned during wave are boss tier.
func (p Profile) IsBossWave(wave int) bool {
	return p.HasBoss && p.BossWaveInterval > 0 && wave%p.BossWaveInterval == 0
}

// SpriteKeys lists every sprite the mission can draw, without duplicates.
func (p Profile) SpriteKeys() []string {
	keys := []string{p.PlayerShip, p.PlayerLaser, p.EnemyLaser}
	keys = append(keys, p.EnemySprites...)
	if p.HasBoss {
		keys = append(keys, p.BossSprites...)
	}
	if p.HasMeteors {
		keys = append(keys, assets.Meteors...)
	}
	keys = append(keys, assets.PowerUps...)

	slices.Sort(keys)
	return slices.Compact(keys)
}
