package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a player's persistent record, keyed by wallet address.
type Profile struct {
	Wallet      string `gorm:"primaryKey;size:42"`
	Lives       int    `gorm:"not null;default:0"`
	HighScore   int    `gorm:"not null;default:0"`
	GamesPlayed int    `gorm:"not null;default:0"`
	LastPlayed  *time.Time
	Username    string `gorm:"size:32"`
	PfpURL      string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScoreEntry is one finished game on the leaderboard.
type ScoreEntry struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Wallet    string    `gorm:"size:42;index"`
	Username  string    `gorm:"size:32"`
	Score     int       `gorm:"index"`
	Mission   int
	Wave      int
	CreatedAt time.Time
}

// BeforeCreate assigns an ID to new entries.
func (s *ScoreEntry) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// GameResult is the outcome of one game, reported at game over.
type GameResult struct {
	Wallet   string
	Username string
	Score    int
	Mission  int
	Wave     int
	At       time.Time
	// LivesLeft is stored on the profile with the result.
	LivesLeft int
}

// models lists every table migrated by Open.
var models = []any{&Profile{}, &ScoreEntry{}}
