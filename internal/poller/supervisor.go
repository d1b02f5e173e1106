package poller

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// Fetcher performs one getUpdates request for updates starting at offset,
// holding the connection open for up to timeout. Offset -1 asks for the
// latest update only; timeout 0 returns at once.
type Fetcher interface {
	Fetch(ctx context.Context, offset int, timeout time.Duration) ([]tele.Update, error)
}

// Dispatcher hands an update to the bot's handlers
type Dispatcher func(tele.Update)

// Config tunes restart behaviour
type Config struct {
	// PollTimeout is the long-poll wait of each getUpdates request
	PollTimeout time.Duration
	// RestartInterval is the sustained pace of restarts after network errors
	RestartInterval time.Duration
	// RestartBurst is how many restarts may happen back to back
	RestartBurst int
	// SkipPending drops updates queued before the first cycle
	SkipPending bool
}

// Supervisor keeps the receive/dispatch cycle alive across network
// failures. The next offset survives restarts, so an update is never
// dispatched twice and nothing acknowledged is lost.
type Supervisor struct {
	fetcher  Fetcher
	dispatch Dispatcher
	limiter  *rate.Limiter
	logger   *zap.Logger
	timeout  time.Duration

	skipPending bool
	skipped     bool
	offset      int
}

// New creates a supervisor
func New(fetcher Fetcher, dispatch Dispatcher, cfg Config, logger *zap.Logger) *Supervisor {
	limit := rate.Inf
	if cfg.RestartInterval > 0 {
		limit = rate.Every(cfg.RestartInterval)
	}
	burst := cfg.RestartBurst
	if burst < 1 {
		burst = 1
	}

	return &Supervisor{
		fetcher:     fetcher,
		dispatch:    dispatch,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger,
		timeout:     cfg.PollTimeout,
		skipPending: cfg.SkipPending,
	}
}

// Run polls until a non-network failure occurs or ctx is done.
// Network failures restart the cycle without limit.
func (s *Supervisor) Run(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := s.cycle(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsNetworkError(err) {
			s.logger.Error("Polling failed", zap.Error(err))
			return err
		}

		s.logger.Error("Network error, restarting polling",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("offset", s.offset),
		)

		if err := s.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
	}
}

// Offset returns the id of the next update to be fetched
func (s *Supervisor) Offset() int {
	return s.offset
}

func (s *Supervisor) cycle(ctx context.Context) error {
	if s.skipPending && !s.skipped {
		if err := s.skip(ctx); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := s.fetcher.Fetch(ctx, s.offset, s.timeout)
		if err != nil {
			return err
		}

		for _, u := range updates {
			if u.ID < s.offset {
				s.logger.Debug("Dropping already dispatched update", zap.Int("update_id", u.ID))
				continue
			}
			s.offset = u.ID + 1
			s.dispatch(u)
		}
	}
}

// skip must not long-poll: with an empty queue it would otherwise hold
// startup for a full timeout and then drop the first fresh update
func (s *Supervisor) skip(ctx context.Context) error {
	updates, err := s.fetcher.Fetch(ctx, -1, 0)
	if err != nil {
		return err
	}

	if n := len(updates); n > 0 {
		s.offset = updates[n-1].ID + 1
		s.logger.Info("Skipped pending updates", zap.Int("offset", s.offset))
	}
	s.skipped = true
	return nil
}
