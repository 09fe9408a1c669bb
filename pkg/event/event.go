// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-starstrike/pkg/entity"
)

// Type represents the type of event
type Type string

// Gameplay event types
const (
	GameStarted      Type = "game_started"
	StateChanged     Type = "state_changed"
	BulletFired      Type = "bullet_fired"
	EnemyFired       Type = "enemy_fired"
	EnemySpawned     Type = "enemy_spawned"
	BossSpawned      Type = "boss_spawned"
	MeteorSpawned    Type = "meteor_spawned"
	EnemyHit         Type = "enemy_hit"
	EnemyDestroyed   Type = "enemy_destroyed"
	EnemyEscaped     Type = "enemy_escaped"
	PowerUpDropped   Type = "powerup_dropped"
	PowerUpCollected Type = "powerup_collected"
	EffectExpired    Type = "effect_expired"
	PlayerDamaged    Type = "player_damaged"
	LifeGained       Type = "life_gained"
	WaveAdvanced     Type = "wave_advanced"
	GameOver         Type = "game_over"
	ResultSaved      Type = "result_saved"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id. Unknown ids are ignored.
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			// Copy so a Publish iterating the old slice is unaffected.
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			next = append(next, regs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers. A nil bus drops the event.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	regs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// Specific event implementations

// FireEvent reports bullets created in one volley.
type FireEvent struct {
	BaseEvent
	Count      int
	FromPlayer bool
}

// NewFireEvent creates a new fire event
func NewFireEvent(source interface{}, count int, fromPlayer bool) *FireEvent {
	t := BulletFired
	if !fromPlayer {
		t = EnemyFired
	}
	return &FireEvent{
		BaseEvent:  BaseEvent{EventType: t, Source: source},
		Count:      count,
		FromPlayer: fromPlayer,
	}
}

// EnemyEvent contains information about enemy-related events
type EnemyEvent struct {
	BaseEvent
	EnemyID entity.ID
	Kind    entity.EnemyKind
	X, Y    float64
	HP      int
	Points  int
}

// NewEnemyEvent creates a new enemy event
func NewEnemyEvent(eventType Type, source interface{}, e entity.Enemy, points int) *EnemyEvent {
	return &EnemyEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		EnemyID:   e.ID,
		Kind:      e.Kind,
		X:         e.Rect.X,
		Y:         e.Rect.Y,
		HP:        e.HP,
		Points:    points,
	}
}

// SpawnEvent reports a meteor or other hazard entering the arena.
type SpawnEvent struct {
	BaseEvent
	EntityID entity.ID
	X, Y     float64
}

// PowerUpEvent reports a power-up being dropped or collected
type PowerUpEvent struct {
	BaseEvent
	Kind entity.PowerUpKind
	X, Y float64
}

// NewPowerUpEvent creates a new power-up event
func NewPowerUpEvent(eventType Type, source interface{}, p entity.PowerUp) *PowerUpEvent {
	return &PowerUpEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		Kind:      p.Kind,
		X:         p.Rect.X,
		Y:         p.Rect.Y,
	}
}

// EffectEvent reports a timed player effect ending.
type EffectEvent struct {
	BaseEvent
	Effect entity.Effect
}

// DamageEvent reports one unit of damage dealt to the player.
type DamageEvent struct {
	BaseEvent
	Cause     string
	LivesLeft int
}

// WaveEvent reports the wave counter advancing.
type WaveEvent struct {
	BaseEvent
	Wave int
}

// StateEvent reports a game-state transition.
type StateEvent struct {
	BaseEvent
	From string
	To   string
}

// ResultEvent carries a finished game's outcome.
type ResultEvent struct {
	BaseEvent
	Wallet  string
	Score   int
	Wave    int
	Mission int
	Err     error
}
