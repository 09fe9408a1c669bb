// Package config loads go-starstrike settings from defaults, an optional
// JSON, YAML or TOML file, and STARSTRIKE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, for example
// STARSTRIKE_RENDER_FPS.
const EnvPrefix = "STARSTRIKE"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Render backends.
const (
	BackendTerminal = "terminal"
	BackendEngo     = "engo"
	BackendCanvas   = "canvas"
	BackendNull     = "null"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete application configuration.
type Config struct {
	Arena     ArenaConfig     `mapstructure:"arena"`
	Render    RenderConfig    `mapstructure:"render"`
	Game      GameConfig      `mapstructure:"game"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	Audio     AudioConfig     `mapstructure:"audio"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Player    PlayerConfig    `mapstructure:"player"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ArenaConfig is the playfield size in pixels.
type ArenaConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// RenderConfig selects and tunes the presentation backend.
type RenderConfig struct {
	Backend    string `mapstructure:"backend"`
	FPS        int    `mapstructure:"fps"`
	CellWidth  int    `mapstructure:"cell_width"`
	CellHeight int    `mapstructure:"cell_height"`
	Fullscreen bool   `mapstructure:"fullscreen"`
	VSync      bool   `mapstructure:"vsync"`
	// Output is where the canvas backend writes frames.
	Output string `mapstructure:"output"`
}

// GameConfig holds session rules.
type GameConfig struct {
	Mission       int `mapstructure:"mission"`
	StartingLives int `mapstructure:"starting_lives"`
	TicketLives   int `mapstructure:"ticket_lives"`
}

// AssetsConfig locates sprite images.
type AssetsConfig struct {
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AudioConfig controls sound effects.
type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Volume     float64 `mapstructure:"volume"`
	SampleRate int     `mapstructure:"sample_rate"`
}

// StorageConfig selects the database and its circuit breaker.
type StorageConfig struct {
	Driver             string        `mapstructure:"driver"`
	DSN                string        `mapstructure:"dsn"`
	BreakerMaxRequests uint32        `mapstructure:"breaker_max_requests"`
	BreakerInterval    time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
}

// ServerConfig is the HTTP API listener.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateWindow   time.Duration `mapstructure:"rate_window"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxMemoryMB bounds the readiness memory check. Zero disables it.
	MaxMemoryMB int64 `mapstructure:"max_memory_mb"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// PlayerConfig identifies the local player.
type PlayerConfig struct {
	Wallet   string `mapstructure:"wallet"`
	Username string `mapstructure:"username"`
}

// TelemetryConfig toggles gameplay counters.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Arena: ArenaConfig{Width: 800, Height: 600},
		Render: RenderConfig{
			Backend:    BackendTerminal,
			FPS:        60,
			CellWidth:  10,
			CellHeight: 20,
			VSync:      true,
			Output:     "frame.png",
		},
		Game:   GameConfig{Mission: 1, StartingLives: 3, TicketLives: 5},
		Assets: AssetsConfig{Dir: "assets", Timeout: 10 * time.Second},
		Audio:  AudioConfig{Enabled: true, Volume: 0.3, SampleRate: 44100},
		Storage: StorageConfig{
			Driver:             DriverSQLite,
			DSN:                "starstrike.db",
			BreakerMaxRequests: 1,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     30 * time.Second,
			BreakerMaxFailures: 5,
		},
		Server: ServerConfig{
			Address:      ":8080",
			RateLimit:    60,
			RateWindow:   time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxMemoryMB:  512,
		},
		Log:       LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{Enabled: true},
	}
}

// visit calls set for every key with its value in c. Durations are written
// as strings so saved files stay readable.
func visit(c *Config, set func(key string, value any)) {
	set("arena.width", c.Arena.Width)
	set("arena.height", c.Arena.Height)

	set("render.backend", c.Render.Backend)
	set("render.fps", c.Render.FPS)
	set("render.cell_width", c.Render.CellWidth)
	set("render.cell_height", c.Render.CellHeight)
	set("render.fullscreen", c.Render.Fullscreen)
	set("render.vsync", c.Render.VSync)
	set("render.output", c.Render.Output)

	set("game.mission", c.Game.Mission)
	set("game.starting_lives", c.Game.StartingLives)
	set("game.ticket_lives", c.Game.TicketLives)

	set("assets.dir", c.Assets.Dir)
	set("assets.timeout", c.Assets.Timeout.String())

	set("audio.enabled", c.Audio.Enabled)
	set("audio.volume", c.Audio.Volume)
	set("audio.sample_rate", c.Audio.SampleRate)

	set("storage.driver", c.Storage.Driver)
	set("storage.dsn", c.Storage.DSN)
	set("storage.breaker_max_requests", c.Storage.BreakerMaxRequests)
	set("storage.breaker_interval", c.Storage.BreakerInterval.String())
	set("storage.breaker_timeout", c.Storage.BreakerTimeout.String())
	set("storage.breaker_max_failures", c.Storage.BreakerMaxFailures)

	set("server.address", c.Server.Address)
	set("server.rate_limit", c.Server.RateLimit)
	set("server.rate_window", c.Server.RateWindow.String())
	set("server.read_timeout", c.Server.ReadTimeout.String())
	set("server.write_timeout", c.Server.WriteTimeout.String())
	set("server.max_memory_mb", c.Server.MaxMemoryMB)

	set("log.level", c.Log.Level)
	set("log.file", c.Log.File)

	set("player.wallet", c.Player.Wallet)
	set("player.username", c.Player.Username)

	set("telemetry.enabled", c.Telemetry.Enabled)
}

func newViper() *viper.Viper {
	v := viper.New()
	visit(DefaultConfig(), v.SetDefault)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig builds a configuration from defaults, the file at path (if
// path is not empty) and the environment, then validates it.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes config to path. The format follows the file extension.
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	v := viper.New()
	visit(config, v.Set)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return invalid("arena size must be positive, got %vx%v", c.Arena.Width, c.Arena.Height)
	case !slices.Contains([]string{BackendTerminal, BackendEngo, BackendCanvas, BackendNull}, c.Render.Backend):
		return invalid("unknown render backend %q", c.Render.Backend)
	case c.Render.FPS <= 0 || c.Render.FPS > 240:
		return invalid("render.fps must be in [1,240], got %d", c.Render.FPS)
	case c.Render.CellWidth <= 0 || c.Render.CellHeight <= 0:
		return invalid("terminal cell size must be positive")
	case c.Game.StartingLives < 0 || c.Game.TicketLives <= 0:
		return invalid("lives must be non-negative and tickets must grant lives")
	case c.Assets.Timeout <= 0:
		return invalid("assets.timeout must be positive")
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return invalid("audio.volume must be in [0,1], got %v", c.Audio.Volume)
	case c.Audio.SampleRate <= 0:
		return invalid("audio.sample_rate must be positive")
	case c.Storage.Driver != DriverSQLite && c.Storage.Driver != DriverPostgres:
		return invalid("unknown storage driver %q", c.Storage.Driver)
	case c.Storage.DSN == "":
		return invalid("storage.dsn is required")
	case c.Storage.BreakerMaxFailures == 0:
		return invalid("storage.breaker_max_failures must be positive")
	case c.Server.RateLimit <= 0 || c.Server.RateWindow <= 0:
		return invalid("server rate limit and window must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
