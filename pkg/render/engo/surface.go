package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-starstrike/pkg/physics"
	"github.com/opd-ai/go-starstrike/pkg/render"
)

// Renderer is the part of common.RenderSystem the surface uses.
type Renderer interface {
	Add(basic *ecs.BasicEntity, rc *common.RenderComponent, sc *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// Surface draws frames through a pool of render entities. Each draw call
// claims the next entity; entities left over at End are hidden. Pool slot
// i always has z-index i, so draw order is call order.
type Surface struct {
	renderer Renderer
	assets   *AssetManager
	font     *common.Font
	width    float64
	height   float64

	pool   []*sprite
	used   int
	frames int
}

// NewSurface creates a surface of the given arena size. font may be nil,
// in which case text is not drawn.
func NewSurface(r Renderer, assets *AssetManager, font *common.Font, width, height float64) *Surface {
	return &Surface{
		renderer: r,
		assets:   assets,
		font:     font,
		width:    width,
		height:   height,
	}
}

// Size implements render.Surface.
func (s *Surface) Size() (float64, float64) {
	return s.width, s.height
}

// Resize changes the arena size the surface reports.
func (s *Surface) Resize(width, height float64) {
	if width > 0 && height > 0 {
		s.width, s.height = width, height
	}
}

// Begin implements render.Surface.
func (s *Surface) Begin() {
	s.used = 0
}

func (s *Surface) next() *sprite {
	if s.used < len(s.pool) {
		sp := s.pool[s.used]
		s.used++
		sp.Hidden = false
		sp.Scale = engo.Point{X: 1, Y: 1}
		sp.Rotation = 0
		return sp
	}

	sp := &sprite{BasicEntity: ecs.NewBasic()}
	sp.Scale = engo.Point{X: 1, Y: 1}
	sp.StartZIndex = float32(len(s.pool))
	// The render system picks a shader from the drawable when the entity
	// is added, so it needs one up front.
	sp.Drawable = common.Rectangle{}
	s.pool = append(s.pool, sp)
	s.used++
	s.renderer.Add(&sp.BasicEntity, &sp.RenderComponent, &sp.SpaceComponent)
	return sp
}

// DrawImage implements render.Surface.
func (s *Surface) DrawImage(key string, r physics.Rect, rotation float64) bool {
	if s.assets == nil {
		return false
	}
	tex, ok := s.assets.Texture(key)
	if !ok || tex.Width() <= 0 || tex.Height() <= 0 {
		return false
	}

	sp := s.next()
	sp.Drawable = tex
	sp.Color = color.White
	sp.Scale = engo.Point{
		X: float32(r.W) / tex.Width(),
		Y: float32(r.H) / tex.Height(),
	}
	sp.Width, sp.Height = float32(r.W), float32(r.H)
	sp.Position = rotatedOrigin(r, rotation)
	sp.Rotation = float32(rotation * 180 / math.Pi)
	return true
}

// rotatedOrigin returns where the top-left corner of r must sit so that
// rotating about that corner leaves the centre of r in place.
func rotatedOrigin(r physics.Rect, rotation float64) engo.Point {
	if rotation == 0 {
		return engo.Point{X: float32(r.X), Y: float32(r.Y)}
	}
	c := r.Center()
	sin, cos := math.Sincos(rotation)
	hx, hy := r.W/2, r.H/2
	return engo.Point{
		X: float32(c.X - (hx*cos - hy*sin)),
		Y: float32(c.Y - (hx*sin + hy*cos)),
	}
}

// FillRect implements render.Surface.
func (s *Surface) FillRect(r physics.Rect, c color.Color) {
	sp := s.next()
	sp.Drawable = common.Rectangle{}
	sp.Color = c
	sp.Width, sp.Height = float32(r.W), float32(r.H)
	sp.Position = engo.Point{X: float32(r.X), Y: float32(r.Y)}
}

// DrawText implements render.Surface. y is the baseline.
func (s *Surface) DrawText(x, y float64, str string, c color.Color) {
	if s.font == nil || str == "" {
		return
	}
	sp := s.next()
	sp.Drawable = common.Text{Font: s.font, Text: str}
	sp.Color = c
	sp.Width = float32(len(str)) * float32(s.font.Size) / 2
	sp.Height = float32(s.font.Size)
	sp.Position = engo.Point{X: float32(x), Y: float32(y - s.font.Size)}
}

// End implements render.Surface.
func (s *Surface) End() error {
	for _, sp := range s.pool[s.used:] {
		sp.Hidden = true
	}
	s.frames++
	return nil
}

// Frames returns how many frames have been drawn.
func (s *Surface) Frames() int {
	return s.frames
}

// Visible returns how many entities the last frame used.
func (s *Surface) Visible() int {
	return s.used
}

// Close removes every pooled entity from the render system.
func (s *Surface) Close() {
	for _, sp := range s.pool {
		s.renderer.Remove(sp.BasicEntity)
	}
	s.pool = nil
	s.used = 0
}

var _ render.Surface = (*Surface)(nil)
