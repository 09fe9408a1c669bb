// Package audio synthesizes the game's sound effects and plays them in
// response to gameplay events.
package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Sound names one effect.
type Sound int

// Sound effects
const (
	Laser Sound = iota
	Laser2
	Hit
	PowerUp
	Damage
	Lose
)

// Sounds lists every effect.
var Sounds = []Sound{Laser, Laser2, Hit, PowerUp, Damage, Lose}

func (s Sound) String() string {
	switch s {
	case Laser:
		return "laser"
	case Laser2:
		return "laser2"
	case Hit:
		return "hit"
	case PowerUp:
		return "powerUp"
	case Damage:
		return "damage"
	case Lose:
		return "lose"
	default:
		return "unknown"
	}
}

// Wave is an oscillator shape.
type Wave int

// Oscillator shapes
const (
	Sine Wave = iota
	Square
	Saw
	Noise
)

type oscillator struct {
	freq  float64
	sweep float64 // Hz per second
	phase float64
	left  int
	pos   int
	wave  Wave
	rate  beep.SampleRate
}

// NewOscillator returns a streamer producing d of wave at freq Hz. A
// non-zero sweep bends the pitch linearly over time.
func NewOscillator(freq, sweep float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, sweep: sweep, left: rate.N(d), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	if o.left <= 0 {
		return 0, false
	}
	n := min(len(samples), o.left)
	for i := range n {
		var v float64
		switch o.wave {
		case Sine:
			v = math.Sin(2 * math.Pi * o.phase)
		case Square:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case Saw:
			v = 2 * (o.phase - 0.5)
		case Noise:
			v = rand.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		t := float64(o.pos) / float64(o.rate)
		f := max(o.freq+o.sweep*t, 20)
		o.phase += f / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	o.left -= n
	return n, true
}

func (o *oscillator) Err() error { return nil }

type envelope struct {
	s       beep.Streamer
	pos     int
	attack  int
	release int
	total   int
}

// NewEnvelope shapes s with a linear attack and release over d.
func NewEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{s: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	releaseAt := e.total - e.release
	for i := range n {
		if e.pos >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if e.release > 0 && e.pos >= releaseAt {
			vol = float64(e.total-e.pos) / float64(e.release)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// gain scales s linearly; zero or less is silence.
func gain(s beep.Streamer, v float64) *effects.Volume {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

func tone(freq, sweep float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, sweep, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// Build returns a fresh streamer for s.
func Build(s Sound, rate beep.SampleRate) beep.Streamer {
	switch s {
	case Laser:
		return gain(tone(1400, -6000, 120*time.Millisecond, Square, rate), 0.4)
	case Laser2:
		return gain(tone(900, -3000, 160*time.Millisecond, Saw, rate), 0.4)
	case Hit:
		return beep.Mix(
			gain(tone(0, 0, 90*time.Millisecond, Noise, rate), 0.5),
			gain(tone(220, -800, 90*time.Millisecond, Square, rate), 0.3),
		)
	case PowerUp:
		return beep.Seq(
			gain(tone(660, 0, 80*time.Millisecond, Sine, rate), 0.6),
			gain(tone(880, 0, 80*time.Millisecond, Sine, rate), 0.6),
			gain(tone(1320, 0, 120*time.Millisecond, Sine, rate), 0.6),
		)
	case Damage:
		return gain(tone(300, -900, 250*time.Millisecond, Saw, rate), 0.6)
	case Lose:
		return beep.Seq(
			gain(tone(440, 0, 200*time.Millisecond, Square, rate), 0.5),
			gain(tone(330, 0, 200*time.Millisecond, Square, rate), 0.5),
			gain(tone(220, -100, 500*time.Millisecond, Square, rate), 0.5),
		)
	default:
		return nil
	}
}
