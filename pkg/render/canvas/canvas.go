// Package canvas renders frames offscreen with gg and writes them as PNG.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Resolver returns the decoded sprite for key.
type Resolver interface {
	Resolve(key string) (image.Image, bool)
}

type spriteKey struct {
	key  string
	w, h int
}

// Surface draws into an in-memory RGBA image. Scaled sprites are cached
// per size.
type Surface struct {
	dc       *gg.Context
	width    float64
	height   float64
	sprites  Resolver
	scaled   map[spriteKey]image.Image
	frames   int
	lastPath string
	output   string
}

// NewSurface creates a canvas of width by height pixels. When output is
// not empty, End writes each frame there as a PNG. sprites may be nil.
func NewSurface(width, height int, sprites Resolver, output string) *Surface {
	return &Surface{
		dc:      gg.NewContext(width, height),
		width:   float64(width),
		height:  float64(height),
		sprites: sprites,
		scaled:  make(map[spriteKey]image.Image),
		output:  output,
	}
}

// Size implements render.Surface.
func (s *Surface) Size() (float64, float64) {
	return s.width, s.height
}

// Begin implements render.Surface.
func (s *Surface) Begin() {
	s.dc.SetColor(color.Black)
	s.dc.Clear()
}

// DrawImage implements render.Surface.
func (s *Surface) DrawImage(key string, r physics.Rect, rotation float64) bool {
	if s.sprites == nil {
		return false
	}
	w, h := int(r.W+0.5), int(r.H+0.5)
	if w <= 0 || h <= 0 {
		return false
	}
	sk := spriteKey{key, w, h}
	img, ok := s.scaled[sk]
	if !ok {
		src, found := s.sprites.Resolve(key)
		if !found {
			return false
		}
		img = imaging.Resize(src, w, h, imaging.Lanczos)
		s.scaled[sk] = img
	}

	c := r.Center()
	if rotation == 0 {
		s.dc.DrawImageAnchored(img, int(c.X), int(c.Y), 0.5, 0.5)
		return true
	}
	s.dc.Push()
	s.dc.RotateAbout(rotation, c.X, c.Y)
	s.dc.DrawImageAnchored(img, int(c.X), int(c.Y), 0.5, 0.5)
	s.dc.Pop()
	return true
}

// FillRect implements render.Surface.
func (s *Surface) FillRect(r physics.Rect, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	s.dc.Fill()
}

// DrawText implements render.Surface using gg's built-in face.
func (s *Surface) DrawText(x, y float64, str string, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawString(str, x, y)
}

// End implements render.Surface.
func (s *Surface) End() error {
	s.frames++
	if s.output == "" {
		return nil
	}
	return s.SavePNG(s.output)
}

// SavePNG writes the current image to path, creating its directory.
func (s *Surface) SavePNG(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save frame %d: %w", s.frames, err)
	}
	s.lastPath = path
	return nil
}

// Image returns the current frame.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// Frames returns how many frames have ended.
func (s *Surface) Frames() int {
	return s.frames
}
