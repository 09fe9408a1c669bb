// Package terminal renders frames into a tcell screen and turns terminal
// key and mouse events into player input.
package terminal

import (
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-starstrike/pkg/assets"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// Surface maps arena coordinates onto terminal cells. Each cell covers
// CellWidth by CellHeight arena pixels.
type Surface struct {
	screen       tcell.Screen
	cellW, cellH float64

	mu            sync.Mutex
	width, height float64
}

// NewSurface creates a surface for an arena of width by height pixels.
func NewSurface(screen tcell.Screen, width, height, cellW, cellH float64) *Surface {
	if cellW <= 0 {
		cellW = 10
	}
	if cellH <= 0 {
		cellH = 20
	}
	return &Surface{screen: screen, width: width, height: height, cellW: cellW, cellH: cellH}
}

// Size returns the arena size.
func (s *Surface) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Resize fits the arena to a terminal of cols by rows cells and returns
// the new arena size in pixels.
func (s *Surface) Resize(cols, rows int) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cols > 0 && rows > 0 {
		s.width, s.height = float64(cols)*s.cellW, float64(rows)*s.cellH
	}
	return s.width, s.height
}

// Cell converts an arena point to a cell column and row.
func (s *Surface) Cell(x, y float64) (int, int) {
	return int(math.Floor(x / s.cellW)), int(math.Floor(y / s.cellH))
}

// Begin clears the screen.
func (s *Surface) Begin() {
	s.screen.Clear()
}

// End flushes the frame to the terminal.
func (s *Surface) End() error {
	s.screen.Show()
	return nil
}

// cells returns the cell span covered by r, always at least the cell
// holding its centre.
func (s *Surface) cells(r physics.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = s.Cell(r.X, r.Y)
	x1, y1 = s.Cell(r.Right()-0.001, r.Bottom()-0.001)
	if x1 < x0 || y1 < y0 {
		c := r.Center()
		x0, y0 = s.Cell(c.X, c.Y)
		x1, y1 = x0, y0
	}
	return x0, y0, x1, y1
}

func (s *Surface) set(x, y int, ch rune, style tcell.Style) {
	w, h := s.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	s.screen.SetContent(x, y, ch, nil, style)
}

// DrawImage draws the glyph for key's sprite class over r. Rotation is
// ignored. Keys without a glyph report false.
func (s *Surface) DrawImage(key string, r physics.Rect, _ float64) bool {
	g, ok := GlyphFor(key)
	if !ok {
		return false
	}
	style := tcell.StyleDefault.Foreground(g.Color).Background(Tcolor(nil))
	x0, y0, x1, y1 := s.cells(r)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			s.set(x, y, g.Rune, style)
		}
	}
	return true
}

// FillRect paints r. Opaque fills covering the whole arena set the
// background; translucent fills tint the background of existing cells;
// anything else is drawn as solid blocks.
func (s *Surface) FillRect(r physics.Rect, c color.Color) {
	_, _, _, a := c.RGBA()
	if a == 0 {
		return
	}
	x0, y0, x1, y1 := s.cells(r)
	width, height := s.Size()
	whole := r.X <= 0 && r.Y <= 0 && r.W >= width && r.H >= height

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case a < 0xffff:
				w, h := s.screen.Size()
				if x < 0 || y < 0 || x >= w || y >= h {
					continue
				}
				ch, comb, style, _ := s.screen.GetContent(x, y)
				s.screen.SetContent(x, y, ch, comb, style.Background(Tcolor(c)))
			case whole:
				s.set(x, y, ' ', tcell.StyleDefault.Background(Tcolor(c)))
			default:
				s.set(x, y, '█', tcell.StyleDefault.Foreground(Tcolor(c)))
			}
		}
	}
}

// DrawText writes str with its baseline at y.
func (s *Surface) DrawText(x, y float64, str string, c color.Color) {
	col, row := s.Cell(x, y-1)
	style := tcell.StyleDefault.Foreground(Tcolor(c))
	for i, ch := range []rune(str) {
		s.set(col+i, row, ch, style)
	}
}

// Tcolor converts c to a terminal colour. Nil is the terminal default.
func Tcolor(c color.Color) tcell.Color {
	if c == nil {
		return tcell.ColorDefault
	}
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// Glyph is how a sprite class looks in a terminal.
type Glyph struct {
	Rune  rune
	Color tcell.Color
}

var powerUpGlyphs = map[string]Glyph{
	assets.PowerUpTripleLaser:   {'T', tcell.ColorBlue},
	assets.PowerUpFreeze:        {'F', tcell.ColorLightCyan},
	assets.PowerUpInvincibility: {'I', tcell.ColorGold},
	assets.PowerUpRapidFire:     {'R', tcell.ColorSilver},
	assets.PowerUpExtraLife:     {'+', tcell.ColorGreen},
}

// GlyphFor picks a glyph from the sprite key's directory.
func GlyphFor(key string) (Glyph, bool) {
	if g, ok := powerUpGlyphs[key]; ok {
		return g, true
	}
	dir, _, _ := strings.Cut(key, "/")
	switch dir {
	case "player-ships":
		return Glyph{'A', tcell.ColorDodgerBlue}, true
	case "enemies":
		if strings.Contains(key, "Black") {
			return Glyph{'M', tcell.ColorPurple}, true
		}
		return Glyph{'W', tcell.ColorRed}, true
	case "lasers":
		return Glyph{'|', tcell.ColorYellow}, true
	case "meteors":
		return Glyph{'@', tcell.ColorTan}, true
	default:
		return Glyph{}, false
	}
}
