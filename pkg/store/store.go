// Package store persists player profiles and the leaderboard through gorm.
// SQLite is the default driver and Postgres is available for shared
// deployments. Every call goes through a circuit breaker.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// ErrProfileNotFound is returned when no profile exists for a wallet.
var ErrProfileNotFound = errors.New("profile not found")

// Leaderboard bounds.
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 50
)

// Store is the profile and score repository.
type Store struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	breaker *Breaker
	logger  *logging.Logger
	now     func() time.Time
}

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, cfg config.StorageConfig, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Nop()
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	s, err := New(ctx, db, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite && isMemoryDSN(cfg.DSN) {
		// Every connection to :memory: is a separate database.
		s.sqlDB.SetMaxOpenConns(1)
	}

	log.Info(ctx, "Database opened", "driver", cfg.Driver)
	return s, nil
}

// New wraps an existing gorm connection and migrates the schema.
func New(ctx context.Context, db *gorm.DB, cfg config.StorageConfig, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Nop()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{
		db:      db,
		sqlDB:   sqlDB,
		breaker: NewBreaker("starstrike-store", cfg, log),
		logger:  log,
		now:     time.Now,
	}, nil
}

func dialectorFor(cfg config.StorageConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(cfg.DSN), nil
	case config.DriverPostgres:
		return postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// Breaker exposes the circuit breaker for health checks.
func (s *Store) Breaker() *Breaker {
	return s.breaker
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.breaker.Execute(ctx, func() error {
		return s.sqlDB.PingContext(ctx)
	})
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// GetProfile loads the profile for wallet.
func (s *Store) GetProfile(ctx context.Context, wallet string) (*Profile, error) {
	var p Profile
	err := s.breaker.Execute(ctx, func() error {
		err := s.db.WithContext(ctx).First(&p, "wallet = ?", wallet).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// EnsureProfile loads the profile for wallet, creating it with lives if it
// does not exist.
func (s *Store) EnsureProfile(ctx context.Context, wallet string, lives int) (*Profile, error) {
	var p Profile
	err := s.breaker.Execute(ctx, func() error {
		return s.db.WithContext(ctx).
			Where(Profile{Wallet: wallet}).
			Attrs(Profile{Lives: lives}).
			FirstOrCreate(&p).Error
	})
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return &p, nil
}

// SetLives stores the remaining lives for wallet.
func (s *Store) SetLives(ctx context.Context, wallet string, lives int) error {
	return s.updateProfile(ctx, wallet, "lives", lives)
}

// UpdateUsername stores a display name for wallet.
func (s *Store) UpdateUsername(ctx context.Context, wallet, username string) error {
	return s.updateProfile(ctx, wallet, "username", username)
}

func (s *Store) updateProfile(ctx context.Context, wallet, column string, value any) error {
	err := s.breaker.Execute(ctx, func() error {
		res := s.db.WithContext(ctx).Model(&Profile{}).
			Where("wallet = ?", wallet).
			Update(column, value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProfileNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}

// SaveGameResult records a finished game in one transaction: it raises the
// high score if beaten, counts the game, stores the remaining lives and adds
// a leaderboard entry. A missing profile is created.
func (s *Store) SaveGameResult(ctx context.Context, r GameResult) (*Profile, error) {
	if r.At.IsZero() {
		r.At = s.now()
	}
	var p Profile
	err := s.breaker.Execute(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where(Profile{Wallet: r.Wallet}).
				Attrs(Profile{Lives: r.LivesLeft}).
				FirstOrCreate(&p).Error
			if err != nil {
				return err
			}

			p.HighScore = max(p.HighScore, r.Score)
			p.GamesPlayed++
			p.Lives = r.LivesLeft
			at := r.At
			p.LastPlayed = &at
			if r.Username != "" {
				p.Username = r.Username
			}
			if err := tx.Save(&p).Error; err != nil {
				return err
			}

			return tx.Create(&ScoreEntry{
				Wallet:   r.Wallet,
				Username: p.Username,
				Score:    r.Score,
				Mission:  r.Mission,
				Wave:     r.Wave,
			}).Error
		})
	})
	if err != nil {
		return nil, fmt.Errorf("save game result: %w", err)
	}

	s.logger.Info(ctx, "Game result saved",
		"wallet", r.Wallet,
		"score", r.Score,
		"high_score", p.HighScore,
	)
	return &p, nil
}

// ClampLimit bounds a requested leaderboard size to [1, MaxLeaderboardLimit].
// Zero or negative selects DefaultLeaderboardLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	default:
		return limit
	}
}

// Leaderboard returns the best scores, highest first. Ties go to the
// earlier entry.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]ScoreEntry, error) {
	var entries []ScoreEntry
	err := s.breaker.Execute(ctx, func() error {
		return s.db.WithContext(ctx).
			Order("score DESC").
			Order("created_at ASC").
			Limit(ClampLimit(limit)).
			Find(&entries).Error
	})
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}
