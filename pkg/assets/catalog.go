// pkg/assets/catalog.go
package assets

// Sprite keys are paths relative to the asset directory.
const (
	ShipBlue   = "player-ships/playerShip1_blue.png"
	ShipGreen  = "player-ships/playerShip1_green.png"
	ShipOrange = "player-ships/playerShip1_orange.png"

	LaserBlue  = "lasers/laserBlue01.png"
	LaserGreen = "lasers/laserGreen10.png"
	LaserRed   = "lasers/laserRed01.png"

	PowerUpTripleLaser   = "powerups/pill_blue.png"
	PowerUpFreeze        = "powerups/star_silver.png"
	PowerUpInvincibility = "powerups/star_gold.png"
	PowerUpRapidFire     = "powerups/bold_silver.png"
	PowerUpExtraLife     = "powerups/things_silver.png"
)

// Enemy sprite sets by colour.
var (
	EnemiesBlue  = enemySet("Blue")
	EnemiesGreen = enemySet("Green")
	EnemiesRed   = enemySet("Red")
	EnemiesBlack = enemySet("Black")
)

// Meteors lists every meteor sprite.
var Meteors = []string{
	"meteors/meteorBrown_med1.png",
	"meteors/meteorBrown_med3.png",
	"meteors/meteorGrey_big3.png",
	"meteors/meteorGrey_med1.png",
	"meteors/meteorGrey_med2.png",
}

// PowerUps lists every power-up sprite.
var PowerUps = []string{
	PowerUpTripleLaser,
	PowerUpFreeze,
	PowerUpInvincibility,
	PowerUpRapidFire,
	PowerUpExtraLife,
}

func enemySet(colour string) []string {
	set := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		set = append(set, "enemies/enemy"+colour+string(rune('0'+i))+".png")
	}
	return set
}
