// Package telemetry counts gameplay events with OpenTelemetry instruments.
// Without a global provider the instruments are no-ops.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-starstrike/pkg/event"
)

const instrumentationName = "github.com/opd-ai/go-starstrike/pkg/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Recorder turns bus events into counter increments.
type Recorder struct {
	enemies  metric.Int64Counter
	bullets  metric.Int64Counter
	powerUps metric.Int64Counter
	damage   metric.Int64Counter
	waves    metric.Int64Counter

	subs []*event.Subscription
}

// New creates the counters on m, or on the global meter when m is nil.
func New(m metric.Meter) (*Recorder, error) {
	if m == nil {
		m = meter()
	}
	r := &Recorder{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&r.enemies, "starstrike.enemies.destroyed", "Enemies destroyed by the player"},
		{&r.bullets, "starstrike.bullets.fired", "Bullets fired"},
		{&r.powerUps, "starstrike.powerups.collected", "Power-ups collected"},
		{&r.damage, "starstrike.player.damage", "Damage taken by the player"},
		{&r.waves, "starstrike.waves.reached", "Waves reached"},
	}
	for _, c := range counters {
		counter, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}
	return r, nil
}

// Attach subscribes the recorder to bus.
func (r *Recorder) Attach(bus *event.Bus) {
	ctx := context.Background()
	r.subs = append(r.subs,
		bus.Subscribe(event.EnemyDestroyed, func(ev event.Event) {
			kind := "unknown"
			if ee, ok := ev.(*event.EnemyEvent); ok {
				kind = ee.Kind.String()
			}
			r.enemies.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		}),
		bus.Subscribe(event.BulletFired, r.fired),
		bus.Subscribe(event.EnemyFired, r.fired),
		bus.Subscribe(event.PowerUpCollected, func(ev event.Event) {
			kind := "unknown"
			if pe, ok := ev.(*event.PowerUpEvent); ok {
				kind = pe.Kind.String()
			}
			r.powerUps.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		}),
		bus.Subscribe(event.PlayerDamaged, func(event.Event) {
			r.damage.Add(ctx, 1)
		}),
		bus.Subscribe(event.WaveAdvanced, func(event.Event) {
			r.waves.Add(ctx, 1)
		}),
	)
}

func (r *Recorder) fired(ev event.Event) {
	fe, ok := ev.(*event.FireEvent)
	if !ok || fe.Count <= 0 {
		return
	}
	source := "enemy"
	if fe.FromPlayer {
		source = "player"
	}
	r.bullets.Add(context.Background(), int64(fe.Count), metric.WithAttributes(attribute.String("source", source)))
}

// Detach removes the recorder's subscriptions.
func (r *Recorder) Detach() {
	for _, s := range r.subs {
		s.Cancel()
	}
	r.subs = nil
}
