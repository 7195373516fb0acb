package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/weatheralert/internal/logger"
)

// CycleFunc runs one check cycle. Errors are reported so the scheduler can
// log them; they never stop the loop.
type CycleFunc func(ctx context.Context) error

// Scheduler drives check cycles at a fixed interval. Cycles never overlap:
// the next interval wait starts only after the previous cycle returns, so a
// slow cycle delays the next tick rather than stacking behind it. The wait
// is a timer select, so context cancellation interrupts it promptly instead
// of sleeping out the remaining interval.
type Scheduler struct {
	interval time.Duration
	log      zerolog.Logger
}

// New creates a scheduler with the given check interval.
func New(interval time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		log:      logger.WithComponent("scheduler"),
	}
}

// Run executes cycle immediately and then once per interval until ctx is
// cancelled. A cycle that returns an error or panics is contained; the loop
// carries on with the next tick.
func (s *Scheduler) Run(ctx context.Context, cycle CycleFunc) error {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")

	for {
		s.runOnce(ctx, cycle)

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, cycle CycleFunc) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("check cycle panicked")
		}
	}()

	if err := cycle(ctx); err != nil {
		s.log.Error().Err(err).Msg("check cycle failed")
	}
}
