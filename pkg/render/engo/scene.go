// Package engo is the windowed backend. A GameScene hosts the render
// system, samples keyboard and mouse input and steps the frame loop once
// per engo update.
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/render"
)

// SurfaceTarget receives the surface the scene draws on.
type SurfaceTarget interface {
	SetSurface(s render.Surface)
}

// Options wires a GameScene.
type Options struct {
	Loop     Stepper
	Target   SurfaceTarget
	Input    *input.State
	OnKey    func(rune)
	// OnResize receives the new arena size when the window is resized.
	OnResize func(width, height float64)
	Sprites  Resolver
	Width    float64
	Height   float64
	FontSize float64
	Logger   *logging.Logger
	// Textures overrides texture upload, mainly for tests.
	Textures TextureFunc
}

// GameScene represents the main game scene in Engo
type GameScene struct {
	opts Options

	world   *ecs.World
	surface *Surface
	assets  *AssetManager
	input   *InputSystem
	font    *common.Font

	listening bool
	resizeID  engo.MessageHandlerId
}

// NewGameScene creates a new game scene
func NewGameScene(opts Options) *GameScene {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Input == nil {
		opts.Input = input.NewState()
	}
	return &GameScene{opts: opts}
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "GameScene"
}

// Preload loads the HUD font. Without it the scene still runs, minus text.
func (scene *GameScene) Preload() {
	font, err := LoadHUDFont(scene.opts.FontSize)
	if err != nil {
		scene.opts.Logger.Warn(context.Background(), "HUD font unavailable", "error", err)
		return
	}
	scene.font = font
}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		scene.opts.Logger.Warn(context.Background(), "Unexpected updater type")
		return
	}
	scene.world = world
	common.SetBackground(render.Background)

	rs := &common.RenderSystem{}
	world.AddSystem(rs)

	SetupInputBindings()
	scene.input = NewInputSystem(scene.opts.Input, scene.opts.OnKey)
	world.AddSystem(scene.input)

	scene.attach(rs)
	scene.resizeID = engo.Mailbox.Listen(engo.WindowResizeMessage{}.Type(), scene.handleResize)
	scene.listening = true
	if scene.opts.Loop != nil {
		world.AddSystem(NewLoopSystem(scene.opts.Loop))
	}
	scene.opts.Logger.Info(context.Background(), "Scene ready",
		"width", scene.opts.Width,
		"height", scene.opts.Height,
		"font", scene.font != nil,
	)
}

// attach builds the surface over r and hands it to the target.
func (scene *GameScene) attach(r Renderer) {
	scene.assets = NewAssetManager(scene.opts.Sprites, scene.opts.Textures)
	scene.surface = NewSurface(r, scene.assets, scene.font, scene.opts.Width, scene.opts.Height)
	if scene.opts.Target != nil {
		scene.opts.Target.SetSurface(scene.surface)
	}
}

// handleResize fits the arena to the new window size.
func (scene *GameScene) handleResize(msg engo.Message) {
	m, ok := msg.(engo.WindowResizeMessage)
	if !ok || m.NewWidth <= 0 || m.NewHeight <= 0 {
		return
	}
	w, h := float64(m.NewWidth), float64(m.NewHeight)
	scene.opts.Width, scene.opts.Height = w, h
	if scene.surface != nil {
		scene.surface.Resize(w, h)
	}
	scene.opts.Logger.Debug(context.Background(), "Window resized", "width", w, "height", h)
	if scene.opts.OnResize != nil {
		scene.opts.OnResize(w, h)
	}
}

// Surface returns the surface created by Setup, or nil before it.
func (scene *GameScene) Surface() *Surface {
	return scene.surface
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *GameScene) Exit() {
	if scene.listening {
		engo.Mailbox.StopListen(engo.WindowResizeMessage{}.Type(), scene.resizeID)
		scene.listening = false
	}
	if scene.opts.Target != nil {
		scene.opts.Target.SetSurface(nil)
	}
	if scene.surface != nil {
		scene.surface.Close()
	}
	if scene.assets != nil {
		scene.assets.Close()
	}
	scene.opts.Logger.Info(context.Background(), "Scene exited")
}

// RunOptions configures the window.
type RunOptions struct {
	Title      string
	Fullscreen bool
	VSync      bool
	FPS        int
}

// Run opens the window and blocks until it closes.
func Run(scene *GameScene, opts RunOptions) {
	if opts.Title == "" {
		opts.Title = "Starstrike"
	}
	engo.Run(engo.RunOptions{
		Title:      opts.Title,
		Width:      int(scene.opts.Width),
		Height:     int(scene.opts.Height),
		Fullscreen: opts.Fullscreen,
		VSync:      opts.VSync,
		FPSLimit:   opts.FPS,
	}, scene)
}

// Exit closes the window from outside the update loop.
func Exit() {
	engo.Exit()
}
