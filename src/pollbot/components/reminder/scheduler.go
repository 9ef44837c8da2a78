// Package reminder evaluates every poll against the time-based reminder
// rules and fires each (poll, kind) notification at most once. Exactly-once
// comes entirely from the notification ledger's uniqueness invariant, never
// from scheduler memory, so restarts and overlapping triggers are safe.
package reminder

import (
	"context"
	"time"

	"github.com/JpegDev/poll-discord/src/pollbot/config"
	"github.com/JpegDev/poll-discord/src/shared/types"
	"go.uber.org/zap"
)

// Store is the slice of the poll store the scheduler needs.
type Store interface {
	List() ([]types.Poll, error)
	ListOpen(now time.Time) ([]types.Poll, error)
	ReminderFired(pollID uint64, kind string) (bool, error)
	MarkReminderFired(pollID uint64, kind string) error
}

// Ledger reads a poll's votes.
type Ledger interface {
	List(pollID uint64) ([]types.Vote, error)
}

// Notifier fans a message out to recipients and reports deliveries.
type Notifier interface {
	Notify(ctx context.Context, p *types.Poll, recipients []string, body func(userID string) string) int
}

// Closer removes a poll's voting affordance when its deadline passes.
type Closer interface {
	Close(ctx context.Context, p *types.Poll) error
}

// AudienceResolver yields the member ids able to see a channel.
type AudienceResolver interface {
	Resolve(ctx context.Context, guildID, channelID string) ([]string, error)
}

type SchedulerConfig struct {
	Store    Store
	Ledger   Ledger
	Notifier Notifier
	Closer   Closer
	Audience AudienceResolver
	Rules    config.Reminders
	Location *time.Location
	Log      *zap.SugaredLogger
	Now      func() time.Time
}

type Scheduler struct {
	store    Store
	ledger   Ledger
	notifier Notifier
	closer   Closer
	audience AudienceResolver
	rules    config.Reminders
	loc      *time.Location
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		store:    cfg.Store,
		ledger:   cfg.Ledger,
		notifier: cfg.Notifier,
		closer:   cfg.Closer,
		audience: cfg.Audience,
		rules:    cfg.Rules,
		loc:      cfg.Location,
		log:      cfg.Log,
		now:      cfg.Now,
	}
}

// Run drives the frequent trigger: one sweep per tick until the context is
// cancelled. A sweep that fails never terminates the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Infow("reminder scheduler started", "interval", s.rules.CheckInterval)
	ticker := time.NewTicker(s.rules.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep evaluates the deadline-relative and weekly rules for every poll.
// One poll's failure never blocks the rest of the batch.
func (s *Scheduler) Sweep(ctx context.Context) {
	polls, err := s.store.List()
	if err != nil {
		s.log.Errorw("reminder sweep: list polls failed", "error", err)
		return
	}

	now := s.now()
	for i := range polls {
		if err := s.evaluate(ctx, &polls[i], now); err != nil {
			s.log.Errorw("reminder evaluation failed", "poll", polls[i].ID, "error", err)
		}
	}
}

// DailySweep evaluates the periodic non-voter nudge for open polls without a
// deadline. Driven once a day at the configured anchor hour.
func (s *Scheduler) DailySweep(ctx context.Context) {
	now := s.now()
	polls, err := s.store.ListOpen(now)
	if err != nil {
		s.log.Errorw("daily sweep: list polls failed", "error", err)
		return
	}

	for i := range polls {
		if err := s.evaluateDaily(ctx, &polls[i], now); err != nil {
			s.log.Errorw("daily nudge failed", "poll", polls[i].ID, "error", err)
		}
	}
}
