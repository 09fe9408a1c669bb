// Package api serves the score server's HTTP interface: missions,
// leaderboard and player profiles, plus health probes.
package api

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/opd-ai/go-starstrike/pkg/health"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/store"
	"github.com/opd-ai/go-starstrike/pkg/validation"
)

// DefaultTicketLives is how many lives a ticket grants when unset.
const DefaultTicketLives = 5

// Store is the persistence the API needs.
type Store interface {
	GetProfile(ctx context.Context, wallet string) (*store.Profile, error)
	EnsureProfile(ctx context.Context, wallet string, lives int) (*store.Profile, error)
	SetLives(ctx context.Context, wallet string, lives int) error
	UpdateUsername(ctx context.Context, wallet, username string) error
	SaveGameResult(ctx context.Context, r store.GameResult) (*store.Profile, error)
	Leaderboard(ctx context.Context, limit int) ([]store.ScoreEntry, error)
}

// Options wires a router. Store is required.
type Options struct {
	Store       Store
	Health      *health.HealthChecker
	Limiter     *validation.RateLimiter
	Logger      *logging.Logger
	TicketLives int
}

type handler struct {
	store       Store
	logger      *logging.Logger
	ticketLives int
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("api requires a store")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Health == nil {
		opts.Health = health.NewHealthChecker()
	}
	if opts.TicketLives <= 0 {
		opts.TicketLives = DefaultTicketLives
	}

	h := &handler{
		store:       opts.Store,
		logger:      opts.Logger,
		ticketLives: opts.TicketLives,
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(opts.Logger))

	opts.Health.Register(r.Group("/health"))

	api := r.Group("/api")
	if opts.Limiter != nil {
		api.Use(RateLimit(opts.Limiter))
	}
	{
		api.GET("/missions", h.listMissions)
		api.GET("/missions/:id", h.getMission)
		api.GET("/leaderboard", h.leaderboard)

		profile := api.Group("/profile/:wallet")
		profile.Use(walletParam())
		{
			profile.GET("", h.getProfile)
			profile.POST("/ticket", h.mintTicket)
			profile.POST("/results", h.saveResult)
			profile.PUT("/username", h.updateUsername)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		abort(c, errNotFound)
	})
	return r, nil
}
