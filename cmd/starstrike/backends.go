package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-starstrike/pkg/assets"
	"github.com/opd-ai/go-starstrike/pkg/client"
	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/loop"
	"github.com/opd-ai/go-starstrike/pkg/render"
	"github.com/opd-ai/go-starstrike/pkg/render/canvas"
	engorender "github.com/opd-ai/go-starstrike/pkg/render/engo"
	"github.com/opd-ai/go-starstrike/pkg/render/terminal"
	"github.com/opd-ai/go-starstrike/pkg/session"
)

// snapshotInterval is how often the canvas backend rewrites its PNG.
const snapshotInterval = time.Second

type backend struct {
	cfg     *config.Config
	app     *client.App
	ctrl    *session.Controller
	loop    *loop.Loop
	input   *input.State
	sprites *assets.Library
	logger  *logging.Logger
	cancel  context.CancelFunc
}

func (b backend) run(ctx context.Context) error {
	switch b.cfg.Render.Backend {
	case config.BackendTerminal:
		return b.terminal(ctx)
	case config.BackendEngo:
		return b.engo(ctx)
	case config.BackendCanvas:
		return b.canvas(ctx)
	case config.BackendNull:
		return b.null(ctx)
	default:
		return fmt.Errorf("%w: unknown render backend %q", config.ErrInvalidConfig, b.cfg.Render.Backend)
	}
}

func (b backend) onKey(ctx context.Context) func(rune) {
	return func(r rune) { b.app.HandleKey(ctx, r) }
}

func (b backend) terminal(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	surface := terminal.NewSurface(screen,
		b.cfg.Arena.Width, b.cfg.Arena.Height,
		float64(b.cfg.Render.CellWidth), float64(b.cfg.Render.CellHeight),
	)
	b.app.SetSurface(surface)

	pump := terminal.NewPump(screen, surface, b.input, b.logger)
	pump.OnKey = b.onKey(ctx)
	pump.OnResize = b.app.Resize
	pump.Resize(screen.Size())

	loopDone := make(chan error, 1)
	go func() { loopDone <- b.loop.Run(ctx) }()

	err = pump.Run(ctx)
	b.cancel()
	if loopErr := <-loopDone; loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		return loopErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (b backend) engo(ctx context.Context) error {
	scene := engorender.NewGameScene(engorender.Options{
		Loop:     b.loop,
		Target:   b.app,
		Input:    b.input,
		OnKey:    b.onKey(ctx),
		OnResize: b.app.Resize,
		Sprites:  b.sprites,
		Width:    b.cfg.Arena.Width,
		Height:   b.cfg.Arena.Height,
		Logger:   b.logger,
	})

	go func() {
		<-ctx.Done()
		engorender.Exit()
	}()

	engorender.Run(scene, engorender.RunOptions{
		Fullscreen: b.cfg.Render.Fullscreen,
		VSync:      b.cfg.Render.VSync,
		FPS:        b.cfg.Render.FPS,
	})
	b.cancel()
	return nil
}

// headless starts a game and steps the loop until it ends or ctx is done.
func (b backend) headless(ctx context.Context) error {
	sub := b.ctrl.Bus().Subscribe(event.GameOver, func(event.Event) { b.cancel() })
	defer sub.Cancel()

	b.app.HandleKey(ctx, client.KeyEnter)
	if !b.app.Active() {
		return fmt.Errorf("could not start a game: %s", b.app.Notice())
	}

	err := b.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (b backend) canvas(ctx context.Context) error {
	w, h := int(b.cfg.Arena.Width), int(b.cfg.Arena.Height)
	surface := canvas.NewSurface(w, h, b.sprites, b.cfg.Render.Output)

	snapshot := func() {
		if err := render.Compose(surface, b.app.Frame(), b.app.Overlay()); err != nil {
			b.logger.Error(context.Background(), "Snapshot failed", err)
		}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(snapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				snapshot()
			case <-done:
				return
			}
		}
	}()

	err := b.headless(ctx)
	close(done)
	snapshot()
	b.logger.Info(context.Background(), "Canvas frames written",
		"frames", surface.Frames(),
		"output", b.cfg.Render.Output,
	)
	return err
}

func (b backend) null(ctx context.Context) error {
	b.app.SetSurface(render.NewNullSurface(b.cfg.Arena.Width, b.cfg.Arena.Height, b.logger))
	return b.headless(ctx)
}
