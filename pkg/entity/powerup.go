package entity

// PowerUpKind selects the effect applied on pickup.
type PowerUpKind int

// Power-up variants
const (
	TripleLaserPickup PowerUpKind = iota
	FreezePickup
	InvincibilityPickup
	RapidFirePickup
	ExtraLifePickup
)

// PowerUpKinds lists every variant in declaration order.
var PowerUpKinds = []PowerUpKind{
	TripleLaserPickup,
	FreezePickup,
	InvincibilityPickup,
	RapidFirePickup,
	ExtraLifePickup,
}

func (k PowerUpKind) String() string {
	switch k {
	case TripleLaserPickup:
		return "TRIPLE_LASER"
	case FreezePickup:
		return "FREEZE"
	case InvincibilityPickup:
		return "INVINCIBILITY"
	case RapidFirePickup:
		return "RAPID_FIRE"
	case ExtraLifePickup:
		return "EXTRA_LIFE"
	default:
		return "UNKNOWN"
	}
}

// PowerUp is a pickup dropped by a destroyed enemy.
type PowerUp struct {
	Body
	Kind      PowerUpKind
	FallSpeed float64
	Sprite    string
}
