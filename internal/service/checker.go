package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glpibot/internal/domain"
	"glpibot/internal/repository"
	"glpibot/internal/ticketing"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Notifier delivers messages to users
type Notifier interface {
	Send(userID int64, text string, opts ...interface{}) error
}

// Checker polls the backend for ticket status changes and notifies owners
type Checker struct {
	store    repository.StateStore
	watches  repository.WatchRepository
	tickets  *TicketService
	notifier Notifier
	interval time.Duration
	step     time.Duration
	logger   *zap.Logger
}

// NewChecker creates a new ticket checker
func NewChecker(
	store repository.StateStore,
	watches repository.WatchRepository,
	tickets *TicketService,
	notifier Notifier,
	interval time.Duration,
	logger *zap.Logger,
) *Checker {
	step := time.Second
	if interval < step {
		step = interval
	}
	return &Checker{
		store:    store,
		watches:  watches,
		tickets:  tickets,
		notifier: notifier,
		interval: interval,
		step:     step,
		logger:   logger,
	}
}

// Run checks tickets every interval until shutdown is set.
// The flag is observed at least once per second.
func (c *Checker) Run(shutdown *atomic.Bool) {
	c.logger.Info("Ticket checker started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.step)
	defer ticker.Stop()

	var next time.Time
	for !shutdown.Load() {
		if now := time.Now(); !now.Before(next) {
			if err := c.CheckOnce(context.Background()); err != nil {
				c.logger.Error("Failed to check tickets", zap.Error(err))
			}
			next = now.Add(c.interval)
		}
		<-ticker.C
	}

	c.logger.Info("Ticket checker stopped")
}

// CheckOnce compares every authenticated user's tickets against last seen
// statuses. Failures for a single user are logged and skipped.
func (c *Checker) CheckOnce(ctx context.Context) error {
	sessions, err := c.store.ListAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for _, sess := range sessions {
		notified, err := c.checkUser(ctx, sess)
		if errors.Is(err, ticketing.ErrUnauthorized) {
			c.logger.Warn("Backend session expired, skipping user", zap.Int64("user_id", sess.UserID))
			continue
		}
		if err != nil {
			c.logger.Error("Failed to check user tickets",
				zap.Int64("user_id", sess.UserID),
				zap.Error(err),
			)
			continue
		}
		if notified > 0 {
			c.logger.Info("Ticket updates sent",
				zap.Int64("user_id", sess.UserID),
				zap.Int("count", notified),
			)
		}
	}

	return nil
}

func (c *Checker) checkUser(ctx context.Context, sess *domain.Session) (int, error) {
	tickets, err := c.tickets.List(ctx, sess.Token)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, t := range tickets {
		prev, seen, err := c.watches.GetStatus(ctx, sess.UserID, t.ID)
		if err != nil {
			return notified, err
		}
		if seen && prev == t.Status {
			continue
		}

		if seen {
			if err := c.notifier.Send(sess.UserID, statusChangedText(t, prev)); err != nil {
				return notified, fmt.Errorf("notify ticket %d: %w", t.ID, err)
			}
			notified++
		}

		if err := c.watches.SaveStatus(ctx, sess.UserID, t.ID, t.Status); err != nil {
			return notified, err
		}
	}

	return notified, nil
}

func statusChangedText(t domain.TicketSummary, prev domain.TicketStatus) string {
	return fmt.Sprintf("🔔 Заявка #%d «%s»\nСтатус изменён: %s → %s", t.ID, t.Title, prev, t.Status)
}
