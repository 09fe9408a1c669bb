// Package session owns the player's lives, score and game state across
// games, and persists results when a game ends. Controller implements
// engine.Host.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/engine"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/resource"
	"github.com/opd-ai/go-starstrike/pkg/store"
)

// ErrNoLives is returned by StartGame when the player has no lives left.
var ErrNoLives = errors.New("no lives remaining")

// State is the screen the application is on.
type State int

// Game states
const (
	Menu State = iota
	Playing
	GameOver
	Victory
	MissionSelect
	Leaderboard
	Profile
)

func (s State) String() string {
	switch s {
	case Menu:
		return "MENU"
	case Playing:
		return "PLAYING"
	case GameOver:
		return "GAME_OVER"
	case Victory:
		return "VICTORY"
	case MissionSelect:
		return "MISSION_SELECT"
	case Leaderboard:
		return "LEADERBOARD"
	case Profile:
		return "PROFILE"
	default:
		return "UNKNOWN"
	}
}

// Store is the persistence the controller needs.
type Store interface {
	EnsureProfile(ctx context.Context, wallet string, lives int) (*store.Profile, error)
	SetLives(ctx context.Context, wallet string, lives int) error
	SaveGameResult(ctx context.Context, r store.GameResult) (*store.Profile, error)
}

// EngineFactory builds the engine for a new game.
type EngineFactory func(p mission.Profile, host engine.Host) *engine.Engine

// Options configures a Controller. Store may be nil to play offline.
type Options struct {
	Store       Store
	Bus         *event.Bus
	Logger      *logging.Logger
	Tasks       *resource.Manager
	Game        config.GameConfig
	Wallet      string
	Username    string
	NewEngine   EngineFactory
	SaveTimeout time.Duration
}

// Controller tracks one player's session.
type Controller struct {
	mu        sync.Mutex
	state     State
	lives     int
	score     int
	wave      int
	highScore int
	mission   mission.Profile
	engine    *engine.Engine

	wallet   string
	username string

	store       Store
	bus         *event.Bus
	logger      *logging.Logger
	tasks       *resource.Manager
	game        config.GameConfig
	newEngine   EngineFactory
	saveTimeout time.Duration
	waveSub     *event.Subscription
}

// NewController creates a controller in the Menu state with the configured
// starting lives.
func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Tasks == nil {
		opts.Tasks = resource.NewManager(resource.Limits{}, opts.Logger)
	}
	if opts.Bus == nil {
		opts.Bus = event.NewEventBus()
	}
	if opts.NewEngine == nil {
		bus, logger := opts.Bus, opts.Logger
		opts.NewEngine = func(p mission.Profile, host engine.Host) *engine.Engine {
			return engine.New(p, host, engine.Options{Bus: bus, Logger: logger})
		}
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	if opts.Game.TicketLives <= 0 {
		opts.Game.TicketLives = 5
	}

	c := &Controller{
		state:       Menu,
		lives:       opts.Game.StartingLives,
		wave:        1,
		mission:     mission.Get(opts.Game.Mission),
		wallet:      opts.Wallet,
		username:    opts.Username,
		store:       opts.Store,
		bus:         opts.Bus,
		logger:      opts.Logger,
		tasks:       opts.Tasks,
		game:        opts.Game,
		newEngine:   opts.NewEngine,
		saveTimeout: opts.SaveTimeout,
	}
	// The engine holds its lock while publishing, so the wave is tracked
	// from events rather than read back from the engine.
	c.waveSub = c.bus.Subscribe(event.WaveAdvanced, func(ev event.Event) {
		if we, ok := ev.(*event.WaveEvent); ok {
			c.mu.Lock()
			c.wave = we.Wave
			c.mu.Unlock()
		}
	})
	return c
}

// Bus returns the event bus the controller publishes on.
func (c *Controller) Bus() *event.Bus {
	return c.bus
}

// State returns the current game state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Playing reports whether a game is in progress.
func (c *Controller) Playing() bool {
	return c.State() == Playing
}

// Mission returns the selected mission.
func (c *Controller) Mission() mission.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mission
}

// Engine returns the engine of the current or last game, or nil.
func (c *Controller) Engine() *engine.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine
}

// HighScore returns the best score known for the player.
func (c *Controller) HighScore() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highScore
}

// Wallet returns the player's wallet address.
func (c *Controller) Wallet() string {
	return c.wallet
}

// AddScore implements engine.Host.
func (c *Controller) AddScore(points int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.score += points
}

// AddLife implements engine.Host.
func (c *Controller) AddLife() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lives++
}

// Score implements engine.Host.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

// Lives implements engine.Host.
func (c *Controller) Lives() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lives
}

// TakeDamage implements engine.Host. Losing the last life ends the game
// and saves the result in the background.
func (c *Controller) TakeDamage() {
	c.mu.Lock()
	if c.state != Playing || c.lives <= 0 {
		c.mu.Unlock()
		return
	}
	c.lives--
	if c.lives > 0 {
		c.mu.Unlock()
		return
	}

	c.state = GameOver
	c.highScore = max(c.highScore, c.score)
	result := store.GameResult{
		Wallet:    c.wallet,
		Username:  c.username,
		Score:     c.score,
		Mission:   c.mission.ID,
		Wave:      c.wave,
		At:        time.Now(),
		LivesLeft: 0,
	}
	c.mu.Unlock()

	c.publishState(Playing, GameOver)
	c.bus.Publish(&event.ResultEvent{
		BaseEvent: event.BaseEvent{EventType: event.GameOver, Source: c},
		Wallet:    result.Wallet,
		Score:     result.Score,
		Wave:      result.Wave,
		Mission:   result.Mission,
	})
	c.saveResult(result)
}

func (c *Controller) saveResult(result store.GameResult) {
	if c.store == nil || result.Wallet == "" {
		return
	}
	ctx := logging.WithCorrelationID(context.Background(), "")
	err := c.tasks.Go(ctx, "save-game-result", func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, c.saveTimeout)
		defer cancel()

		_, err := c.store.SaveGameResult(ctx, result)
		if err != nil {
			c.logger.Error(ctx, "Failed to save game result", err,
				"wallet", result.Wallet,
				"score", result.Score,
			)
		}
		c.bus.Publish(&event.ResultEvent{
			BaseEvent: event.BaseEvent{EventType: event.ResultSaved, Source: c},
			Wallet:    result.Wallet,
			Score:     result.Score,
			Wave:      result.Wave,
			Mission:   result.Mission,
			Err:       err,
		})
	})
	if err != nil {
		c.logger.Error(ctx, "Failed to schedule result save", err, "wallet", result.Wallet)
	}
}

// StartGame begins a game of missionID and returns its engine. Unknown
// missions fall back to mission 1.
func (c *Controller) StartGame(missionID int) (*engine.Engine, error) {
	c.mu.Lock()
	if c.lives <= 0 {
		c.mu.Unlock()
		return nil, ErrNoLives
	}
	profile := mission.Get(missionID)
	from := c.state
	c.mission = profile
	c.score = 0
	c.wave = 1
	c.state = Playing
	c.mu.Unlock()

	eng := c.newEngine(profile, c)

	c.mu.Lock()
	c.engine = eng
	c.mu.Unlock()

	c.logger.Info(context.Background(), "Game started",
		"mission", profile.ID,
		"mission_name", profile.Name,
		"lives", c.Lives(),
	)
	c.publishState(from, Playing)
	c.bus.Publish(&event.BaseEvent{EventType: event.GameStarted, Source: c})
	return eng, nil
}

// MintTicket grants TicketLives lives and persists them. The local lives
// are granted even when persisting fails.
func (c *Controller) MintTicket(ctx context.Context) error {
	c.mu.Lock()
	c.lives = c.game.TicketLives
	lives := c.lives
	c.mu.Unlock()

	if c.store == nil || c.wallet == "" {
		return nil
	}
	if _, err := c.store.EnsureProfile(ctx, c.wallet, lives); err != nil {
		c.logger.Error(ctx, "Failed to load profile for ticket", err, "wallet", c.wallet)
		return fmt.Errorf("mint ticket: %w", err)
	}
	if err := c.store.SetLives(ctx, c.wallet, lives); err != nil {
		c.logger.Error(ctx, "Failed to persist ticket lives", err, "wallet", c.wallet)
		return fmt.Errorf("mint ticket: %w", err)
	}
	c.logger.Info(ctx, "Ticket minted", "wallet", c.wallet, "lives", lives)
	return nil
}

// SyncProfile loads the player's stored profile, creating it when missing,
// and adopts its lives and high score.
func (c *Controller) SyncProfile(ctx context.Context) error {
	if c.store == nil || c.wallet == "" {
		return nil
	}
	p, err := c.store.EnsureProfile(ctx, c.wallet, c.game.StartingLives)
	if err != nil {
		c.logger.Error(ctx, "Failed to sync profile", err, "wallet", c.wallet)
		return fmt.Errorf("sync profile: %w", err)
	}

	c.mu.Lock()
	c.lives = p.Lives
	c.highScore = p.HighScore
	if c.username == "" {
		c.username = p.Username
	}
	c.mu.Unlock()
	return nil
}

// ResetGame clears the score and returns to the menu.
func (c *Controller) ResetGame() {
	c.mu.Lock()
	c.score = 0
	c.wave = 1
	c.mu.Unlock()
	c.SetGameState(Menu)
}

// SetGameState moves to s and publishes the transition.
func (c *Controller) SetGameState(s State) {
	c.mu.Lock()
	from := c.state
	c.state = s
	c.mu.Unlock()
	if from != s {
		c.publishState(from, s)
	}
}

// ExitToMenu returns to the menu without touching score or lives.
func (c *Controller) ExitToMenu() {
	c.SetGameState(Menu)
}

func (c *Controller) publishState(from, to State) {
	c.bus.Publish(&event.StateEvent{
		BaseEvent: event.BaseEvent{EventType: event.StateChanged, Source: c},
		From:      from.String(),
		To:        to.String(),
	})
}

// Close waits for pending saves and detaches from the bus.
func (c *Controller) Close(ctx context.Context) error {
	c.waveSub.Cancel()
	return c.tasks.Wait(ctx)
}
