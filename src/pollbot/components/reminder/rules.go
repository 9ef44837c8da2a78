package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/JpegDev/poll-discord/src/pollbot/components/poll"
	"github.com/JpegDev/poll-discord/src/shared/types"
)

const (
	msgDeadlineSoon = "⏰ **Reminder: 2 days left!**\n\nYou have not confirmed your answer for this poll."
	msgDeadlineLast = "🔔 **Reminder: last day!**\n\nConfirm your answer before the voting deadline!"
	msgWeekly       = "📅 **Weekly reminder**\n\nYou still have not confirmed your answer. Can you?"
	msgNonVoters    = "🔔 **Reminder: don't forget to vote!**\n\nYou have not voted on this poll yet."
	msgClosedWait   = "🔒 **Voting is closed!**\n\n⏳ You were still waiting and never confirmed."
	msgClosedMissed = "🔒 **Voting is closed!**\n\n❌ You did not vote in time."
)

// WeeklyKind names the n-th weekly-cycle reminder.
func WeeklyKind(n int) string {
	return fmt.Sprintf("weekly_%d", n)
}

// NonVotersKind names the day-d non-voter nudge.
func NonVotersKind(day int) string {
	return fmt.Sprintf("non_voters_day_%d", day)
}

// evaluate applies the tick rules to one poll, first match wins: closure,
// then the deadline-relative windows, then the weekly cycle for deadline-less
// presence polls.
func (s *Scheduler) evaluate(ctx context.Context, p *types.Poll, now time.Time) error {
	if p.Deadline != nil && !now.Before(*p.Deadline) {
		return s.closePoll(ctx, p)
	}

	if p.Deadline != nil {
		remaining := p.Deadline.Sub(now)
		switch {
		case remaining >= s.rules.DeadlineSoonMin && remaining <= s.rules.DeadlineSoonMax:
			return s.fire(ctx, p, types.ReminderDeadlineMinus2, msgDeadlineSoon)
		case remaining >= s.rules.DeadlineLastMin && remaining <= s.rules.DeadlineLastMax:
			return s.fire(ctx, p, types.ReminderDeadlineMinus1, msgDeadlineLast)
		}
		return nil
	}

	if !p.Presence {
		return nil
	}
	return s.weekly(ctx, p, now)
}

// weekly fires one reminder per completed week since creation, on the same
// calendar day as creation and only within the evening band.
func (s *Scheduler) weekly(ctx context.Context, p *types.Poll, now time.Time) error {
	nowLocal := now.In(s.loc)
	if nowLocal.Hour() < s.rules.EveningStartHour || nowLocal.Hour() > s.rules.EveningEndHour {
		return nil
	}

	weeks := int(now.Sub(p.CreatedAt).Hours() / (24 * 7))
	for n := 1; n <= weeks; n++ {
		target := p.CreatedAt.In(s.loc).AddDate(0, 0, 7*n)
		if !sameDay(target, nowLocal) {
			continue
		}
		if err := s.fire(ctx, p, WeeklyKind(n), msgWeekly); err != nil {
			return err
		}
	}
	return nil
}

// evaluateDaily applies the non-voter nudge: every cadence-th day since
// creation, for open polls without a deadline.
func (s *Scheduler) evaluateDaily(ctx context.Context, p *types.Poll, now time.Time) error {
	if p.Deadline != nil {
		return nil
	}

	days := int(now.Sub(p.CreatedAt).Hours() / 24)
	if days <= 0 || days%s.rules.NonVoterCadence != 0 {
		return nil
	}
	return s.fire(ctx, p, NonVotersKind(days), msgNonVoters)
}

// fire sends one notification batch for (poll, kind) unless the ledger says
// it already went out, then records it. Recording happens after the dispatch
// attempt; a concurrent tick that raced us collapses on the ledger's
// uniqueness invariant.
func (s *Scheduler) fire(ctx context.Context, p *types.Poll, kind, msg string) error {
	fired, err := s.store.ReminderFired(p.ID, kind)
	if err != nil {
		return err
	}
	if fired {
		return nil
	}

	recipients, _, err := s.awaiting(ctx, p)
	if err != nil {
		return err
	}
	delivered := 0
	if len(recipients) > 0 {
		delivered = s.notifier.Notify(ctx, p, recipients, func(string) string { return msg })
	}

	s.log.Infow("reminder fired", "poll", p.ID, "kind", kind, "recipients", len(recipients), "delivered", delivered)
	return s.store.MarkReminderFired(p.ID, kind)
}

// closePoll performs the one-time OPEN → CLOSED transition: strip the voting
// buttons, notify everyone still awaiting, record the closed kind. Once the
// kind is recorded no rule ever fires again for this poll.
func (s *Scheduler) closePoll(ctx context.Context, p *types.Poll) error {
	fired, err := s.store.ReminderFired(p.ID, types.ReminderClosed)
	if err != nil {
		return err
	}
	if fired {
		return nil
	}

	if err := s.closer.Close(ctx, p); err != nil {
		s.log.Errorw("poll close render failed", "poll", p.ID, "error", err)
	}

	recipients, waiting, err := s.awaiting(ctx, p)
	if err != nil {
		return err
	}
	delivered := 0
	if len(recipients) > 0 {
		delivered = s.notifier.Notify(ctx, p, recipients, func(userID string) string {
			if waiting[userID] {
				return msgClosedWait
			}
			return msgClosedMissed
		})
	}

	s.log.Infow("poll closed", "poll", p.ID, "notified", len(recipients), "delivered", delivered)
	return s.store.MarkReminderFired(p.ID, types.ReminderClosed)
}

// awaiting resolves the poll's audience and returns the awaiting-response
// set plus the waiting subset for presence polls.
func (s *Scheduler) awaiting(ctx context.Context, p *types.Poll) ([]string, map[string]bool, error) {
	votes, err := s.ledger.List(p.ID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.audience.Resolve(ctx, p.GuildID, p.ChannelID)
	if err != nil {
		return nil, nil, err
	}
	return poll.Awaiting(p, votes, members), poll.WaitingSet(p, votes), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
