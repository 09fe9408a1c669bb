// Package render draws engine frames onto backend surfaces. Backends live
// in subpackages; this package holds the shared drawing order and HUD.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/opd-ai/go-starstrike/pkg/engine"
	"github.com/opd-ai/go-starstrike/pkg/entity"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Surface is one backend's drawing target, in arena coordinates.
type Surface interface {
	Size() (w, h float64)
	Begin()
	// DrawImage draws the sprite for key into r, rotated by rotation
	// radians about its centre. It returns false when the sprite is
	// unavailable so the caller can fall back to a flat shape.
	DrawImage(key string, r physics.Rect, rotation float64) bool
	FillRect(r physics.Rect, c color.Color)
	DrawText(x, y float64, s string, c color.Color)
	End() error
}

// Palette
var (
	Background     = color.NRGBA{R: 8, G: 10, B: 28, A: 255}
	PlayerColor    = color.NRGBA{R: 80, G: 160, B: 255, A: 255}
	ShieldColor    = color.NRGBA{R: 255, G: 215, B: 0, A: 90}
	PlayerShot     = color.NRGBA{R: 120, G: 220, B: 255, A: 255}
	EnemyShot      = color.NRGBA{R: 255, G: 80, B: 60, A: 255}
	BasicColor     = color.NRGBA{R: 200, G: 60, B: 60, A: 255}
	ShooterColor   = color.NRGBA{R: 230, G: 130, B: 40, A: 255}
	BossColor      = color.NRGBA{R: 150, G: 40, B: 180, A: 255}
	MeteorColor    = color.NRGBA{R: 130, G: 110, B: 90, A: 255}
	HPBackColor    = color.NRGBA{R: 120, G: 0, B: 0, A: 255}
	HPFrontColor   = color.NRGBA{R: 0, G: 200, B: 60, A: 255}
	FreezeOverlay  = color.NRGBA{R: 0, G: 120, B: 255, A: 40}
	TextColor      = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	HighlightColor = color.NRGBA{R: 255, G: 215, B: 0, A: 255}
	OverlayShade   = color.NRGBA{A: 160}
)

// PowerUpColor is the fallback colour for a pickup kind.
func PowerUpColor(k entity.PowerUpKind) color.Color {
	switch k {
	case entity.TripleLaserPickup:
		return color.NRGBA{R: 60, G: 120, B: 255, A: 255}
	case entity.FreezePickup:
		return color.NRGBA{R: 190, G: 220, B: 255, A: 255}
	case entity.InvincibilityPickup:
		return HighlightColor
	case entity.RapidFirePickup:
		return color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	case entity.ExtraLifePickup:
		return color.NRGBA{R: 60, G: 220, B: 90, A: 255}
	default:
		return TextColor
	}
}

// EnemyColor is the fallback colour for an enemy kind.
func EnemyColor(k entity.EnemyKind) color.Color {
	switch k {
	case entity.Shooter:
		return ShooterColor
	case entity.Boss:
		return BossColor
	default:
		return BasicColor
	}
}

// HP bar geometry, above each boss.
const (
	HPBarHeight = 6
	HPBarGap    = 4
)

// HUD placement.
const (
	HUDMargin     = 10
	HUDLineHeight = 20
	// CharWidth is the nominal advance used to centre overlay text.
	CharWidth = 8
)

// DrawFrame paints f onto s and presents it.
func DrawFrame(s Surface, f engine.Frame) error {
	return Compose(s, f, nil)
}

// Compose paints f, then overlay text centred on the arena, and presents
// the result. An empty overlay draws nothing extra.
func Compose(s Surface, f engine.Frame, overlay []string) error {
	s.Begin()
	Paint(s, f)
	if len(overlay) > 0 {
		DrawOverlay(s, overlay)
	}
	return s.End()
}

// Paint draws f between a surface's Begin and End.
func Paint(s Surface, f engine.Frame) {
	w, h := s.Size()
	arena := physics.NewRect(0, 0, w, h)
	s.FillRect(arena, Background)

	for _, p := range f.PowerUps {
		sprite(s, p.Sprite, p.Rect, 0, PowerUpColor(p.Kind))
	}
	for _, m := range f.Meteors {
		sprite(s, m.Sprite, m.Rect, m.Rotation, MeteorColor)
	}
	for _, e := range f.Enemies {
		sprite(s, e.Sprite, e.Rect, 0, EnemyColor(e.Kind))
	}
	for _, b := range f.Bullets {
		c := EnemyShot
		if b.FromPlayer {
			c = PlayerShot
		}
		sprite(s, b.Sprite, b.Rect, 0, c)
	}

	if f.Player.Has(entity.Invincible) {
		halo := f.Player.Rect
		s.FillRect(physics.NewRect(halo.X-4, halo.Y-4, halo.W+8, halo.H+8), ShieldColor)
	}
	if f.Player.Rect.W > 0 {
		sprite(s, f.Player.Sprite, f.Player.Rect, 0, PlayerColor)
	}

	for _, boss := range f.Bosses() {
		bar := physics.NewRect(boss.Rect.X, boss.Rect.Y-HPBarGap-HPBarHeight, boss.Rect.W, HPBarHeight)
		s.FillRect(bar, HPBackColor)
		bar.W *= boss.HealthFraction()
		if bar.W > 0 {
			s.FillRect(bar, HPFrontColor)
		}
	}

	if f.Frozen {
		s.FillRect(arena, FreezeOverlay)
	}

	for i, line := range HUDLines(f) {
		s.DrawText(HUDMargin, HUDMargin+float64(i+1)*HUDLineHeight, line, TextColor)
	}
}

// DrawOverlay darkens the arena and draws lines as a centred block. The
// first line is highlighted as a title.
func DrawOverlay(s Surface, lines []string) {
	w, h := s.Size()
	s.FillRect(physics.NewRect(0, 0, w, h), OverlayShade)

	widest := 0
	for _, l := range lines {
		widest = max(widest, len(l))
	}
	x := (w - float64(widest)*CharWidth) / 2
	y := (h - float64(len(lines))*HUDLineHeight) / 2
	for i, line := range lines {
		c := TextColor
		if i == 0 {
			c = HighlightColor
		}
		s.DrawText(max(x, HUDMargin), y+float64(i+1)*HUDLineHeight, line, c)
	}
}

func sprite(s Surface, key string, r physics.Rect, rotation float64, fallback color.Color) {
	if key != "" && s.DrawImage(key, r, rotation) {
		return
	}
	s.FillRect(r, fallback)
}

// HUDLines returns the heads-up display text for f, one entry per line.
func HUDLines(f engine.Frame) []string {
	lines := []string{
		fmt.Sprintf("SCORE %d", f.Score),
		fmt.Sprintf("LIVES %d", f.Lives),
		fmt.Sprintf("WAVE %d  %s", f.Wave, f.MissionName),
	}
	for _, e := range f.Player.Effects {
		secs := math.Ceil(e.Remaining.Seconds())
		lines = append(lines, fmt.Sprintf("%s %.0fs", e.Effect, secs))
	}
	if f.Frozen {
		lines = append(lines, "FROZEN")
	}
	return lines
}
