// cmd/starstrike/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-starstrike/pkg/assets"
	"github.com/opd-ai/go-starstrike/pkg/audio"
	"github.com/opd-ai/go-starstrike/pkg/client"
	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/engine"
	"github.com/opd-ai/go-starstrike/pkg/event"
	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/loop"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/resource"
	"github.com/opd-ai/go-starstrike/pkg/session"
	"github.com/opd-ai/go-starstrike/pkg/store"
	"github.com/opd-ai/go-starstrike/pkg/telemetry"
	"github.com/opd-ai/go-starstrike/pkg/validation"
)

type flags struct {
	config        string
	backend       string
	mission       int
	wallet        string
	createDefault bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&f.backend, "backend", "", "Render backend: terminal, engo, canvas or null (overrides config)")
	flag.IntVar(&f.mission, "mission", 0, "Mission to select at start (overrides config)")
	flag.StringVar(&f.wallet, "wallet", "", "Player wallet address (overrides config)")
	flag.BoolVar(&f.createDefault, "default", false, "Create default configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintln(os.Stderr, "starstrike:", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(f flags) (*config.Config, error) {
	path := f.config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = ""
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if f.backend != "" {
		cfg.Render.Backend = f.backend
	}
	if f.mission != 0 {
		cfg.Game.Mission = f.mission
	}
	if f.wallet != "" {
		cfg.Player.Wallet = f.wallet
	}
	if cfg.Player.Wallet != "" {
		wallet, err := validation.ValidateWallet(cfg.Player.Wallet)
		if err != nil {
			return nil, err
		}
		cfg.Player.Wallet = wallet
	}
	if !mission.Exists(cfg.Game.Mission) {
		cfg.Game.Mission = mission.DefaultID
	}
	return cfg, cfg.Validate()
}

// newLogger keeps JSON off the terminal backend's screen.
func newLogger(cfg *config.Config) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.Log.Level)
	switch {
	case cfg.Log.File != "":
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logging.NewLoggerWithWriter(file, level), func() { _ = file.Close() }, nil
	case cfg.Render.Backend == config.BackendTerminal:
		return logging.NewLoggerWithWriter(io.Discard, level), func() {}, nil
	default:
		return logging.NewLoggerWithWriter(os.Stdout, level), func() {}, nil
	}
}

func run(ctx context.Context, f flags) error {
	if f.createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), f.config); err != nil {
			return err
		}
		fmt.Println("Created default configuration file", f.config)
		return nil
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(logging.WithCorrelationID(ctx, ""))
	defer cancel()

	logger.Info(ctx, "Starting starstrike",
		"backend", cfg.Render.Backend,
		"mission", cfg.Game.Mission,
		"wallet", cfg.Player.Wallet,
	)

	var (
		st          session.Store
		leaderboard client.LeaderboardFunc
	)
	if cfg.Player.Wallet != "" {
		db, err := store.Open(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Warn(ctx, "Store unavailable, playing offline", "error", err)
		} else {
			defer db.Close()
			st = db
			leaderboard = db.Leaderboard
		}
	}

	tasks := resource.NewManager(resource.Limits{MaxMemoryMB: cfg.Server.MaxMemoryMB}, logger)
	bus := event.NewEventBus()
	width, height := cfg.Arena.Width, cfg.Arena.Height

	ctrl := session.NewController(session.Options{
		Store:    st,
		Bus:      bus,
		Logger:   logger,
		Tasks:    tasks,
		Game:     cfg.Game,
		Wallet:   cfg.Player.Wallet,
		Username: cfg.Player.Username,
		NewEngine: func(p mission.Profile, host engine.Host) *engine.Engine {
			return engine.New(p, host, engine.Options{
				Width:  width,
				Height: height,
				Bus:    bus,
				Logger: logger,
			})
		},
	})
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := ctrl.Close(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Pending saves did not finish", err)
		}
	}()

	if err := ctrl.SyncProfile(ctx); err != nil {
		logger.Warn(ctx, "Profile sync failed", "error", err)
	}

	library := assets.NewLibrary(cfg.Assets.Dir, logger)
	preloadCtx, preloadDone := context.WithTimeout(ctx, cfg.Assets.Timeout)
	if _, err := library.Preload(preloadCtx, mission.Get(cfg.Game.Mission).SpriteKeys()); err != nil {
		logger.Warn(ctx, "Asset preload interrupted", "error", err)
	}
	preloadDone()

	var board *audio.Board
	if cfg.Audio.Enabled && interactive(cfg.Render.Backend) {
		board = audio.NewBoard(cfg.Audio, logger)
		if err := board.Open(); err != nil {
			logger.Warn(ctx, "Audio disabled", "error", err)
		}
		board.Attach(bus)
		defer board.Close()
	}

	if cfg.Telemetry.Enabled {
		rec, err := telemetry.New(nil)
		if err != nil {
			logger.Warn(ctx, "Telemetry disabled", "error", err)
		} else {
			rec.Attach(bus)
			defer rec.Detach()
		}
	}

	in := input.NewState()
	app, err := client.New(client.Options{
		Controller:  ctrl,
		Input:       in,
		Board:       board,
		Leaderboard: leaderboard,
		Logger:      logger,
		Width:       width,
		Height:      height,
		Quit:        cancel,
	})
	if err != nil {
		return err
	}

	lp, err := loop.New(loop.Config{
		FPS:        cfg.Render.FPS,
		Simulation: app,
		Input:      in,
		Active:     app.Active,
		Render:     app.Render,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	b := backend{
		cfg:     cfg,
		app:     app,
		ctrl:    ctrl,
		loop:    lp,
		input:   in,
		sprites: library,
		logger:  logger,
		cancel:  cancel,
	}
	err = b.run(ctx)
	logger.Info(context.Background(), "Starstrike stopped",
		"frames", lp.Frames(),
		"high_score", ctrl.HighScore(),
	)
	return err
}

func interactive(backend string) bool {
	return backend == config.BackendTerminal || backend == config.BackendEngo
}
