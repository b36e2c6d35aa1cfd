// Package retry runs an operation in a bounded loop, waiting an exponentially
// growing delay between attempts when the error is classified as transient.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrExhausted is wrapped into the final error when every retry failed.
var ErrExhausted = errors.New("retries exhausted")

type Config struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// BaseDelay is multiplied by 2^k before retry k (k starts at 1).
	BaseDelay time.Duration
}

// DefaultConfig waits 10s, 20s and 40s.
var DefaultConfig = Config{MaxRetries: 3, BaseDelay: 5 * time.Second}

// Sleeper waits between attempts. Tests replace it to avoid real waiting.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

// TimerSleeper blocks on a real timer and returns early if ctx is done.
var TimerSleeper Sleeper = timerSleeper{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type ErrorClassifier func(error) bool

type Retrier struct {
	config      Config
	isRetryable ErrorClassifier
	sleeper     Sleeper
	logger      zerolog.Logger
}

func NewRetrier(config Config, classifier ErrorClassifier, sleeper Sleeper, logger zerolog.Logger) *Retrier {
	if sleeper == nil {
		sleeper = TimerSleeper
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Retrier{
		config:      config,
		isRetryable: classifier,
		sleeper:     sleeper,
		logger:      logger,
	}
}

// Delay returns the wait before retry k.
func (c Config) Delay(k int) time.Duration {
	return c.BaseDelay * time.Duration(1<<k)
}

func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	for retries := 0; ; retries++ {
		err := operation(ctx)
		if err == nil {
			if retries > 0 {
				r.logger.Info().Int("retries", retries).Msg("operation succeeded after retry")
			}
			return nil
		}

		if r.isRetryable == nil || !r.isRetryable(err) {
			return err
		}
		if retries == r.config.MaxRetries {
			r.logger.Error().Err(err).Int("retries", retries).Msg("operation failed permanently")
			return fmt.Errorf("%w after %d retries: %w", ErrExhausted, retries, err)
		}

		delay := r.config.Delay(retries + 1)
		r.logger.Warn().Err(err).
			Int("retry", retries+1).
			Int("max_retries", r.config.MaxRetries).
			Dur("delay", delay).
			Msg("transient error, backing off")

		if err := r.sleeper.Sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}
