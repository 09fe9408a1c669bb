// Package client ties a session to a frame loop and a render surface. It
// owns the menu screens and the keys that move between them, so every
// backend behaves the same.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/audio"
	"github.com/opd-ai/go-starstrike/pkg/engine"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/render"
	"github.com/opd-ai/go-starstrike/pkg/session"
	"github.com/opd-ai/go-starstrike/pkg/store"
)

// Control runes understood by HandleKey besides printable keys.
const (
	KeyEnter     = '\r'
	KeyEscape    = 0x1b
	KeyInterrupt = 0x03
)

// LeaderboardFunc loads the top scores.
type LeaderboardFunc func(ctx context.Context, limit int) ([]store.ScoreEntry, error)

// Options configures an App. Controller and Input are required.
type Options struct {
	Controller  *session.Controller
	Input       *input.State
	Board       *audio.Board
	Leaderboard LeaderboardFunc
	Logger      *logging.Logger
	Width       float64
	Height      float64
	// Quit is called when the player asks to leave.
	Quit func()
}

// App is one player's client.
type App struct {
	ctrl        *session.Controller
	input       *input.State
	board       *audio.Board
	leaderboard LeaderboardFunc
	logger      *logging.Logger
	quit        func()

	mu       sync.Mutex
	width    float64
	height   float64
	surface  render.Surface
	selected int
	scores   []store.ScoreEntry
	notice   string
}

// New creates an app in the menu.
func New(opts Options) (*App, error) {
	if opts.Controller == nil || opts.Input == nil {
		return nil, errors.New("client requires a controller and an input state")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Quit == nil {
		opts.Quit = func() {}
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = engine.DefaultWidth, engine.DefaultHeight
	}
	return &App{
		ctrl:        opts.Controller,
		input:       opts.Input,
		board:       opts.Board,
		leaderboard: opts.Leaderboard,
		logger:      opts.Logger,
		quit:        opts.Quit,
		width:       opts.Width,
		height:      opts.Height,
		selected:    opts.Controller.Mission().ID,
	}, nil
}

// SetSurface chooses where Render draws.
func (a *App) SetSurface(s render.Surface) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.surface = s
}

// Resize sets the arena to the viewport size. The current game is
// re-fitted and later games start at this size.
func (a *App) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	a.mu.Lock()
	a.width, a.height = width, height
	a.mu.Unlock()
	if eng := a.ctrl.Engine(); eng != nil {
		eng.Resize(width, height)
	}
}

// Size returns the arena size games are played at.
func (a *App) Size() (float64, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width, a.height
}

// Active reports whether the simulation should tick.
func (a *App) Active() bool {
	return a.ctrl.Playing()
}

// Tick advances the current game.
func (a *App) Tick(now time.Time, in input.Snapshot) {
	if eng := a.ctrl.Engine(); eng != nil && a.ctrl.Playing() {
		eng.Tick(now, in)
	}
}

// Frame returns the frame to draw: the current or last game, or an empty
// arena before the first game.
func (a *App) Frame() engine.Frame {
	if eng := a.ctrl.Engine(); eng != nil {
		return eng.Frame()
	}
	width, height := a.Size()
	return engine.Frame{
		Width:  width,
		Height: height,
		Lives:  a.ctrl.Lives(),
		Wave:   1,
	}
}

// Render draws the current frame and screen overlay.
func (a *App) Render(time.Time) error {
	a.mu.Lock()
	s := a.surface
	a.mu.Unlock()
	if s == nil {
		return nil
	}
	return render.Compose(s, a.Frame(), a.Overlay())
}

// Selected returns the mission the next game will use.
func (a *App) Selected() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// Notice returns the last message shown to the player.
func (a *App) Notice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice
}

func (a *App) setNotice(format string, args ...any) {
	a.mu.Lock()
	a.notice = fmt.Sprintf(format, args...)
	a.mu.Unlock()
}

// HandleKey applies one key press.
func (a *App) HandleKey(ctx context.Context, r rune) {
	if r == KeyInterrupt {
		a.quit()
		return
	}
	if r == 'n' && a.board != nil {
		on := a.board.Toggle()
		a.logger.Debug(ctx, "Sound toggled", "enabled", on)
		return
	}

	switch a.ctrl.State() {
	case session.Menu:
		a.menuKey(ctx, r)
	case session.MissionSelect:
		switch {
		case r >= '1' && r <= '9' && mission.Exists(int(r-'0')):
			a.mu.Lock()
			a.selected = int(r - '0')
			a.mu.Unlock()
			a.ctrl.SetGameState(session.Menu)
		case r == KeyEscape:
			a.ctrl.SetGameState(session.Menu)
		}
	case session.Playing:
		if r == KeyEscape {
			a.input.Release()
			a.ctrl.ExitToMenu()
		}
	case session.GameOver, session.Victory:
		if r == KeyEnter || r == KeyEscape {
			a.ctrl.ResetGame()
		}
	case session.Leaderboard, session.Profile:
		if r == KeyEnter || r == KeyEscape {
			a.ctrl.SetGameState(session.Menu)
		}
	}
}

func (a *App) menuKey(ctx context.Context, r rune) {
	switch r {
	case KeyEnter:
		a.start(ctx)
	case 'm':
		a.ctrl.SetGameState(session.MissionSelect)
	case 't':
		if err := a.ctrl.MintTicket(ctx); err != nil {
			a.setNotice("Ticket granted offline: %v", err)
			return
		}
		a.setNotice("Ticket minted: %d lives", a.ctrl.Lives())
	case 'l':
		a.loadScores(ctx)
		a.ctrl.SetGameState(session.Leaderboard)
	case 'p':
		a.ctrl.SetGameState(session.Profile)
	case 'q', KeyEscape:
		a.quit()
	}
}

func (a *App) start(ctx context.Context) {
	a.input.Release()
	eng, err := a.ctrl.StartGame(a.Selected())
	if errors.Is(err, session.ErrNoLives) {
		a.setNotice("No lives left. Press T to mint a ticket.")
		return
	}
	if err != nil {
		a.logger.Error(ctx, "Failed to start game", err)
		a.setNotice("Could not start: %v", err)
		return
	}
	eng.Resize(a.Size())
	a.setNotice("")
}

func (a *App) loadScores(ctx context.Context) {
	if a.leaderboard == nil {
		return
	}
	scores, err := a.leaderboard(ctx, store.DefaultLeaderboardLimit)
	if err != nil {
		a.logger.Warn(ctx, "Leaderboard unavailable", "error", err)
		a.setNotice("Leaderboard unavailable")
		return
	}
	a.mu.Lock()
	a.scores = scores
	a.mu.Unlock()
}
