package canvas

import (
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/go-starstrike/pkg/engine"
	"github.com/opd-ai/go-starstrike/pkg/physics"
	"github.com/opd-ai/go-starstrike/pkg/render"
)

type mapResolver map[string]image.Image

func (m mapResolver) Resolve(key string) (image.Image, bool) {
	img, ok := m[key]
	return img, ok
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func sameRGB(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar>>8 == br>>8 && ag>>8 == bg>>8 && ab>>8 == bb>>8
}

func TestSurface_FillRect(t *testing.T) {
	s := NewSurface(100, 80, nil, "")
	s.Begin()
	s.FillRect(physics.NewRect(10, 10, 20, 20), render.BasicColor)
	if err := s.End(); err != nil {
		t.Fatal(err)
	}
	if got := s.Image().At(20, 20); !sameRGB(got, render.BasicColor) {
		t.Errorf("pixel = %v, want %v", got, render.BasicColor)
	}
	if got := s.Image().At(50, 50); !sameRGB(got, color.Black) {
		t.Errorf("background pixel = %v, want black", got)
	}
	if s.Frames() != 1 {
		t.Errorf("Frames() = %d", s.Frames())
	}
}

func TestSurface_DrawImageScales(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	s := NewSurface(100, 100, mapResolver{"ship.png": solid(4, 4, red)}, "")
	s.Begin()

	if !s.DrawImage("ship.png", physics.NewRect(20, 20, 40, 40), 0) {
		t.Fatal("DrawImage() = false")
	}
	if got := s.Image().At(40, 40); !sameRGB(got, red) {
		t.Errorf("sprite centre = %v, want red", got)
	}
	if got := s.Image().At(70, 70); !sameRGB(got, color.Black) {
		t.Errorf("outside sprite = %v, want black", got)
	}
	if len(s.scaled) != 1 {
		t.Errorf("scaled cache = %d entries", len(s.scaled))
	}

	s.DrawImage("ship.png", physics.NewRect(0, 0, 40, 40), 0.5)
	if len(s.scaled) != 1 {
		t.Error("same size was rescaled")
	}

	if s.DrawImage("missing.png", physics.NewRect(0, 0, 10, 10), 0) {
		t.Error("DrawImage() = true for a missing sprite")
	}
	if s.DrawImage("ship.png", physics.NewRect(0, 0, 0, 10), 0) {
		t.Error("DrawImage() = true for an empty rect")
	}
}

func TestSurface_WritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frames", "last.png")
	s := NewSurface(200, 150, nil, out)

	f := engine.Frame{
		Width: 200, Height: 150, Score: 300, Lives: 3, Wave: 1,
		Player: engine.PlayerState{Rect: physics.NewRect(80, 100, 40, 40)},
	}
	if err := render.DrawFrame(s, f); err != nil {
		t.Fatalf("DrawFrame() error = %v", err)
	}

	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("frame not written: %v", err)
	}
	defer file.Close()
	img, format, err := image.Decode(file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 200 || img.Bounds().Dy() != 150 {
		t.Errorf("decoded %s %v", format, img.Bounds())
	}
	if got := img.At(100, 120); !sameRGB(got, render.PlayerColor) {
		t.Errorf("player pixel = %v, want %v", got, render.PlayerColor)
	}
}
