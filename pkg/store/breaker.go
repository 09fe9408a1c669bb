package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// Operation is a database call guarded by the breaker.
type Operation func() error

// Breaker isolates database failures. After BreakerMaxFailures consecutive
// failures calls fail fast with gobreaker.ErrOpenState until the timeout
// passes.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *logging.Logger
}

// NewBreaker creates a breaker from the storage settings.
func NewBreaker(name string, cfg config.StorageConfig, logger *logging.Logger) *Breaker {
	if logger == nil {
		logger = logging.Nop()
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// Missing rows and cancelled callers say nothing about database health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrProfileNotFound) ||
				errors.Is(err, context.Canceled)
		},
	}

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

// Execute runs op through the breaker.
func (b *Breaker) Execute(ctx context.Context, op Operation) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn(ctx, "database call rejected",
			"breaker", b.cb.Name(),
			"state", b.cb.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Counts returns the breaker's request counters for the current interval.
func (b *Breaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}
