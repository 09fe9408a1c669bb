package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/store"
	"github.com/opd-ai/go-starstrike/pkg/validation"
)

var (
	errNotFound       = errors.New("not found")
	errMissionUnknown = errors.New("mission not found")
	errBadRequest     = errors.New("bad request")
)

// MissionView is the public form of a mission profile.
type MissionView struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	EnemySpeed       float64 `json:"enemy_speed"`
	EnemySpawnMS     int64   `json:"enemy_spawn_ms"`
	EnemyShootChance float64 `json:"enemy_shoot_chance"`
	HasMeteors       bool    `json:"has_meteors"`
	HasBoss          bool    `json:"has_boss"`
	BossWaveInterval int     `json:"boss_wave_interval,omitempty"`
	PowerUpDropRate  float64 `json:"powerup_drop_rate"`
}

func missionView(p mission.Profile) MissionView {
	return MissionView{
		ID:               p.ID,
		Name:             p.Name,
		EnemySpeed:       p.EnemySpeed,
		EnemySpawnMS:     p.EnemySpawnRate.Milliseconds(),
		EnemyShootChance: p.EnemyShootChance,
		HasMeteors:       p.HasMeteors,
		HasBoss:          p.HasBoss,
		BossWaveInterval: p.BossWaveInterval,
		PowerUpDropRate:  p.PowerUpDropRate,
	}
}

// ProfileView is the public form of a player profile.
type ProfileView struct {
	Wallet      string     `json:"wallet"`
	Username    string     `json:"username,omitempty"`
	Lives       int        `json:"lives"`
	HighScore   int        `json:"high_score"`
	GamesPlayed int        `json:"games_played"`
	LastPlayed  *time.Time `json:"last_played,omitempty"`
}

func profileView(p *store.Profile) ProfileView {
	return ProfileView{
		Wallet:      p.Wallet,
		Username:    p.Username,
		Lives:       p.Lives,
		HighScore:   p.HighScore,
		GamesPlayed: p.GamesPlayed,
		LastPlayed:  p.LastPlayed,
	}
}

// ScoreView is one leaderboard row. Wallets are masked.
type ScoreView struct {
	Rank     int       `json:"rank"`
	Wallet   string    `json:"wallet"`
	Username string    `json:"username,omitempty"`
	Score    int       `json:"score"`
	Mission  int       `json:"mission"`
	Wave     int       `json:"wave"`
	At       time.Time `json:"at"`
}

// ResultRequest reports a finished game.
type ResultRequest struct {
	Score     int    `json:"score"`
	Wave      int    `json:"wave"`
	Mission   int    `json:"mission"`
	LivesLeft int    `json:"lives_left"`
	Username  string `json:"username"`
}

// UsernameRequest sets a display name.
type UsernameRequest struct {
	Username string `json:"username"`
}

func (h *handler) listMissions(c *gin.Context) {
	all := mission.All()
	views := make([]MissionView, 0, len(all))
	for _, p := range all {
		views = append(views, missionView(p))
	}
	c.JSON(http.StatusOK, gin.H{"missions": views})
}

func (h *handler) getMission(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abort(c, errBadRequest)
		return
	}
	if !mission.Exists(id) {
		abort(c, errMissionUnknown)
		return
	}
	c.JSON(http.StatusOK, missionView(mission.Get(id)))
}

func (h *handler) leaderboard(c *gin.Context) {
	limit := store.DefaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abort(c, errBadRequest)
			return
		}
		limit = store.ClampLimit(n)
	}

	entries, err := h.store.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "Leaderboard query failed", err)
		return
	}

	rows := make([]ScoreView, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, ScoreView{
			Rank:     i + 1,
			Wallet:   logging.MaskWallet(e.Wallet),
			Username: e.Username,
			Score:    e.Score,
			Mission:  e.Mission,
			Wave:     e.Wave,
			At:       e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"limit": limit, "scores": rows})
}

func (h *handler) getProfile(c *gin.Context) {
	p, err := h.store.GetProfile(c.Request.Context(), c.GetString(walletKey))
	if err != nil {
		h.fail(c, "Profile lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, profileView(p))
}

// mintTicket grants a fresh set of lives, creating the profile if needed.
func (h *handler) mintTicket(c *gin.Context) {
	ctx := c.Request.Context()
	wallet := c.GetString(walletKey)

	p, err := h.store.EnsureProfile(ctx, wallet, h.ticketLives)
	if err != nil {
		h.fail(c, "Ticket mint failed", err)
		return
	}
	if p.Lives != h.ticketLives {
		if err := h.store.SetLives(ctx, wallet, h.ticketLives); err != nil {
			h.fail(c, "Ticket mint failed", err)
			return
		}
		p.Lives = h.ticketLives
	}

	h.logger.Info(ctx, "Ticket minted", "wallet", wallet, "lives", p.Lives)
	c.JSON(http.StatusOK, profileView(p))
}

func (h *handler) saveResult(c *gin.Context) {
	var req ResultRequest
	if !bind(c, &req) {
		return
	}
	if err := validation.ValidateScore(req.Score, req.Wave, req.Mission); err != nil {
		abort(c, err)
		return
	}
	if req.LivesLeft < 0 {
		req.LivesLeft = 0
	}
	if req.Username != "" {
		name, err := validation.ValidateUsername(req.Username)
		if err != nil {
			abort(c, err)
			return
		}
		req.Username = name
	}

	p, err := h.store.SaveGameResult(c.Request.Context(), store.GameResult{
		Wallet:    c.GetString(walletKey),
		Username:  req.Username,
		Score:     req.Score,
		Mission:   req.Mission,
		Wave:      req.Wave,
		LivesLeft: req.LivesLeft,
	})
	if err != nil {
		h.fail(c, "Result save failed", err)
		return
	}
	c.JSON(http.StatusCreated, profileView(p))
}

func (h *handler) updateUsername(c *gin.Context) {
	var req UsernameRequest
	if !bind(c, &req) {
		return
	}
	name, err := validation.ValidateUsername(req.Username)
	if err != nil {
		abort(c, err)
		return
	}

	ctx := c.Request.Context()
	wallet := c.GetString(walletKey)
	if err := h.store.UpdateUsername(ctx, wallet, name); err != nil {
		h.fail(c, "Username update failed", err)
		return
	}
	p, err := h.store.GetProfile(ctx, wallet)
	if err != nil {
		h.fail(c, "Profile lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, profileView(p))
}

// bind decodes a size-limited JSON body, answering 400 on failure.
func bind(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, validation.MaxBodySize)
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(c, "invalid JSON body"))
		return false
	}
	return true
}

// fail logs unexpected errors before answering.
func (h *handler) fail(c *gin.Context, msg string, err error) {
	if status(err) >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), msg, err)
	}
	abort(c, err)
}

func abort(c *gin.Context, err error) {
	code := status(err)
	text := err.Error()
	if code == http.StatusInternalServerError {
		text = "internal error"
	}
	c.AbortWithStatusJSON(code, errorBody(c, text))
}

func status(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalidWallet),
		errors.Is(err, validation.ErrInvalidUsername),
		errors.Is(err, validation.ErrInvalidScore),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrProfileNotFound),
		errors.Is(err, errMissionUnknown),
		errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(c *gin.Context, msg string) gin.H {
	return gin.H{
		"error":      msg,
		"request_id": logging.GetCorrelationID(c.Request.Context()),
	}
}
