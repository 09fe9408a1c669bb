package engo

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-starstrike/pkg/engine"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/physics"
	"github.com/opd-ai/go-starstrike/pkg/render"
)

type fakeRenderer struct {
	added   []*common.RenderComponent
	removed int
}

func (f *fakeRenderer) Add(_ *ecs.BasicEntity, rc *common.RenderComponent, _ *common.SpaceComponent) {
	f.added = append(f.added, rc)
}

func (f *fakeRenderer) Remove(ecs.BasicEntity) {
	f.removed++
}

type surfaceHolder struct {
	surface render.Surface
}

func (h *surfaceHolder) SetSurface(s render.Surface) {
	h.surface = s
}

func newTestSurface(t *testing.T, sprites Resolver) (*Surface, *fakeRenderer) {
	t.Helper()
	uploads := 0
	r := &fakeRenderer{}
	s := NewSurface(r, NewAssetManager(sprites, fakeUploader(&uploads, nil)), nil, 800, 600)
	return s, r
}

func TestSurface_PoolReuse(t *testing.T) {
	s, r := newTestSurface(t, nil)

	s.Begin()
	for i := range 3 {
		s.FillRect(physics.Rect{X: float64(i), W: 10, H: 10}, color.White)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if len(r.added) != 3 || s.Visible() != 3 {
		t.Fatalf("added %d visible %d, want 3", len(r.added), s.Visible())
	}

	s.Begin()
	s.FillRect(physics.Rect{W: 5, H: 5}, color.Black)
	_ = s.End()

	if len(r.added) != 3 {
		t.Errorf("pool grew to %d on reuse", len(r.added))
	}
	if r.added[0].Hidden {
		t.Error("used entity hidden")
	}
	for i, rc := range r.added[1:] {
		if !rc.Hidden {
			t.Errorf("unused entity %d visible", i+1)
		}
	}
	for i, rc := range r.added {
		if rc.StartZIndex != float32(i) {
			t.Errorf("entity %d z = %v", i, rc.StartZIndex)
		}
	}
	if s.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", s.Frames())
	}

	s.Close()
	if r.removed != 3 {
		t.Errorf("removed = %d, want 3", r.removed)
	}
}

func TestSurface_DrawImage(t *testing.T) {
	sprites := mapResolver{"meteors/meteorBrown_big1.png": image.NewNRGBA(image.Rect(0, 0, 50, 25))}
	s, r := newTestSurface(t, sprites)

	s.Begin()
	if s.DrawImage("enemies/enemyBlack1.png", physics.Rect{W: 40, H: 40}, 0) {
		t.Error("DrawImage() with missing sprite returned true")
	}
	if !s.DrawImage("meteors/meteorBrown_big1.png", physics.Rect{X: 10, Y: 20, W: 100, H: 50}, 0) {
		t.Fatal("DrawImage() returned false")
	}
	_ = s.End()

	if len(r.added) != 1 {
		t.Fatalf("added = %d, want 1", len(r.added))
	}
	sp := s.pool[0]
	if sp.Scale.X != 2 || sp.Scale.Y != 2 {
		t.Errorf("scale = %v", sp.Scale)
	}
	if sp.Position.X != 10 || sp.Position.Y != 20 {
		t.Errorf("position = %v", sp.Position)
	}
}

func TestRotatedOrigin_KeepsCentre(t *testing.T) {
	r := physics.Rect{X: 100, Y: 100, W: 40, H: 20}
	for _, rot := range []float64{0, math.Pi / 4, math.Pi / 2, math.Pi} {
		o := rotatedOrigin(r, rot)
		sin, cos := math.Sincos(rot)
		cx := float64(o.X) + r.W/2*cos - r.H/2*sin
		cy := float64(o.Y) + r.W/2*sin + r.H/2*cos
		if math.Abs(cx-120) > 1e-3 || math.Abs(cy-110) > 1e-3 {
			t.Errorf("rotation %v: centre (%v, %v), want (120, 110)", rot, cx, cy)
		}
	}
}

func TestSurface_TextNeedsFont(t *testing.T) {
	s, r := newTestSurface(t, nil)
	s.Begin()
	s.DrawText(10, 30, "SCORE 0", color.White)
	_ = s.End()
	if len(r.added) != 0 {
		t.Errorf("text drawn without font: %d entities", len(r.added))
	}
}

func TestSurface_DrawsFrame(t *testing.T) {
	s, r := newTestSurface(t, nil)
	f := engine.Frame{Width: 800, Height: 600, Lives: 3, Wave: 1,
		Player: engine.PlayerState{Rect: physics.Rect{X: 380, Y: 520, W: 40, H: 40}},
	}
	if err := render.DrawFrame(s, f); err != nil {
		t.Fatalf("DrawFrame() error = %v", err)
	}
	// background and player
	if len(r.added) != 2 {
		t.Errorf("entities = %d, want 2", len(r.added))
	}
}

func TestGameScene_Attach(t *testing.T) {
	holder := &surfaceHolder{}
	scene := NewGameScene(Options{Target: holder, Width: 800, Height: 600})
	if scene.Type() != "GameScene" {
		t.Errorf("Type() = %q", scene.Type())
	}

	r := &fakeRenderer{}
	scene.attach(r)
	if holder.surface == nil || scene.Surface() == nil {
		t.Fatal("surface not handed to target")
	}
	if w, h := scene.Surface().Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %vx%v", w, h)
	}

	scene.Surface().Begin()
	scene.Surface().FillRect(physics.Rect{W: 1, H: 1}, color.White)
	_ = scene.Surface().End()

	scene.Exit()
	if holder.surface != nil {
		t.Error("surface kept after Exit")
	}
	if r.removed != 1 {
		t.Errorf("removed = %d, want 1", r.removed)
	}
}

func TestGameScene_WindowResize(t *testing.T) {
	eng := engine.New(mission.Get(1), engine.NewLocalHost(3), engine.Options{Width: 800, Height: 600})
	scene := NewGameScene(Options{Width: 800, Height: 600, OnResize: eng.Resize})
	scene.attach(&fakeRenderer{})

	scene.handleResize(engo.WindowResizeMessage{OldWidth: 800, OldHeight: 600, NewWidth: 500, NewHeight: 300})
	if w, h := scene.Surface().Size(); w != 500 || h != 300 {
		t.Errorf("surface size = %vx%v, want 500x300", w, h)
	}
	if w, h := eng.Bounds(); w != 500 || h != 300 {
		t.Errorf("engine bounds = %vx%v, want 500x300", w, h)
	}
	if p := eng.Frame().Player.Rect; p.Right() > 500 || p.Bottom() > 300 {
		t.Errorf("player %+v outside arena", p)
	}

	// Minimised windows report zero size.
	scene.handleResize(engo.WindowResizeMessage{NewWidth: 0, NewHeight: 0})
	if w, h := eng.Bounds(); w != 500 || h != 300 {
		t.Errorf("bounds after zero resize = %vx%v, want 500x300", w, h)
	}
}

func TestInputSystem_Apply(t *testing.T) {
	state := input.NewState()
	var keys []rune
	is := NewInputSystem(state, func(r rune) { keys = append(keys, r) })
	now := time.Unix(0, 0)

	var held [4]bool
	held[input.Left] = true
	is.Apply(Sample{Held: held, Pressed: []rune{RuneEnter, 'm'}})

	snap := state.Snapshot(now)
	if !snap.Direction.Left || snap.Direction.Right {
		t.Errorf("direction = %+v", snap.Direction)
	}
	if len(keys) != 2 || keys[0] != RuneEnter || keys[1] != 'm' {
		t.Errorf("keys = %q", keys)
	}

	is.Apply(Sample{})
	if state.Snapshot(now).Direction.Left {
		t.Error("left still held after release")
	}
}

func TestInputSystem_Drag(t *testing.T) {
	state := input.NewState()
	is := NewInputSystem(state, nil)
	now := time.Unix(0, 0)

	is.Apply(Sample{MouseDown: true, MouseX: 100, MouseY: 100})
	is.Apply(Sample{MouseDown: true, MouseX: 130, MouseY: 90})
	is.Apply(Sample{MouseDown: true, MouseX: 140, MouseY: 90})

	snap := state.Snapshot(now)
	if snap.Drag.X != 40 || snap.Drag.Y != -10 {
		t.Errorf("drag = %+v, want (40, -10)", snap.Drag)
	}

	is.Apply(Sample{MouseDown: false, MouseX: 200, MouseY: 200})
	if d := state.Snapshot(now).Drag; !d.IsZero() {
		t.Errorf("drag after release = %+v", d)
	}
}

type countingStepper struct{ steps int }

func (c *countingStepper) Step(time.Time) bool {
	c.steps++
	return true
}

func TestLoopSystem_Update(t *testing.T) {
	st := &countingStepper{}
	ls := NewLoopSystem(st)
	ls.Update(1.0 / 60)
	ls.Update(1.0 / 60)
	if st.steps != 2 {
		t.Errorf("steps = %d, want 2", st.steps)
	}
}
