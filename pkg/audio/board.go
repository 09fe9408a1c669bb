package audio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// MaxVoices caps the number of effects playing at once.
const MaxVoices = 16

// Board mixes sound effects triggered by bus events. Without a speaker it
// still mixes, and Output can be streamed directly.
type Board struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	mixer   *beep.Mixer
	volume  *effects.Volume
	enabled bool
	speaker bool
	subs    []*event.Subscription
	logger  *logging.Logger
}

// NewBoard creates a board from cfg.
func NewBoard(cfg config.AudioConfig, logger *logging.Logger) *Board {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	mixer := &beep.Mixer{}
	b := &Board{
		rate:    beep.SampleRate(cfg.SampleRate),
		mixer:   mixer,
		enabled: cfg.Enabled,
		logger:  logger,
	}
	b.volume = gain(mixer, cfg.Volume)
	return b
}

// Open starts playback through the system speaker. On failure the board
// stays usable but silent.
func (b *Board) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.speaker {
		return nil
	}
	if err := speaker.Init(b.rate, b.rate.N(100*time.Millisecond)); err != nil {
		b.logger.Warn(context.Background(), "Audio device unavailable, running silent", "error", err)
		return err
	}
	speaker.Play(b.Output())
	b.speaker = true
	return nil
}

// Output returns the mixed, volume-adjusted stream.
func (b *Board) Output() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		n, _ := b.volume.Stream(samples)
		return n, true
	})
}

// Attach subscribes the board to gameplay events on bus.
func (b *Board) Attach(bus *event.Bus) {
	on := func(t event.Type, s Sound) {
		b.subs = append(b.subs, bus.Subscribe(t, func(event.Event) { b.Play(s) }))
	}
	on(event.BulletFired, Laser)
	on(event.EnemyFired, Laser2)
	on(event.EnemyHit, Hit)
	on(event.EnemyDestroyed, Hit)
	on(event.PowerUpCollected, PowerUp)
	on(event.PlayerDamaged, Damage)
	on(event.GameOver, Lose)
}

// Detach removes every bus subscription.
func (b *Board) Detach() {
	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
}

// Play queues s unless the board is disabled or already at MaxVoices.
func (b *Board) Play(s Sound) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled || b.mixer.Len() >= MaxVoices {
		return false
	}
	st := Build(s, b.rate)
	if st == nil {
		return false
	}
	b.mixer.Add(st)
	return true
}

// Voices returns the number of effects still playing.
func (b *Board) Voices() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mixer.Len()
}

// Enabled reports whether effects are played.
func (b *Board) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// SetEnabled turns effects on or off. Disabling drops queued effects.
func (b *Board) SetEnabled(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = on
	if !on {
		b.mixer.Clear()
	}
}

// Toggle flips Enabled and returns the new value.
func (b *Board) Toggle() bool {
	on := !b.Enabled()
	b.SetEnabled(on)
	return on
}

// SetVolume sets the master volume in [0,1].
func (b *Board) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v = min(max(v, 0), 1)
	if v == 0 {
		b.volume.Silent = true
		return
	}
	b.volume.Silent = false
	b.volume.Volume = math.Log2(v)
}

// Close detaches from the bus, drops queued effects and releases the
// speaker.
func (b *Board) Close() {
	b.Detach()
	b.mu.Lock()
	b.mixer.Clear()
	opened := b.speaker
	b.speaker = false
	b.mu.Unlock()
	if opened {
		speaker.Close()
	}
}
