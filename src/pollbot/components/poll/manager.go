package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/JpegDev/poll-discord/src/shared/types"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the slice of the poll store the manager needs.
type Store interface {
	Create(p *types.Poll) error
	Get(id uint64) (*types.Poll, error)
	ListOpen(now time.Time) ([]types.Poll, error)
	Delete(id uint64) error
}

// Ledger is the slice of the vote ledger the manager needs.
type Ledger interface {
	Record(pollID uint64, userID, choice string) error
	Retract(pollID uint64, userID, choice string) error
	RetractAll(pollID uint64, userID string) error
	List(pollID uint64) ([]types.Vote, error)
	ListByVoter(pollID uint64, userID string) ([]types.Vote, error)
}

// Session is the slice of discordgo the manager needs.
type Session interface {
	ChannelMessageSendComplex(channelID string, d *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// AudienceResolver yields the member ids able to see a channel.
type AudienceResolver interface {
	Resolve(ctx context.Context, guildID, channelID string) ([]string, error)
}

// Outcome tells the interaction layer what a vote event did.
type Outcome int

const (
	OutcomeRecorded Outcome = iota // vote stored (single-choice or first pick)
	OutcomeAdded                   // vote stored alongside others (multiple-choice)
	OutcomeWithdrawn               // same choice pressed again, vote removed
	OutcomeClosed                  // poll deadline passed, nothing changed
)

type ManagerConfig struct {
	Store    Store
	Ledger   Ledger
	Session  Session
	Audience AudienceResolver
	Redis    *redis.Client
	Log      *zap.SugaredLogger
	Location *time.Location
	Limits   RenderLimits
	Now      func() time.Time
}

// Manager drives the poll lifecycle: creation, the per-interaction vote rule,
// display refresh, closure, and startup resume.
type Manager struct {
	store    Store
	ledger   Ledger
	session  Session
	audience AudienceResolver
	rdb      *redis.Client
	log      *zap.SugaredLogger
	loc      *time.Location
	limits   RenderLimits
	now      func() time.Time
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		store:    cfg.Store,
		ledger:   cfg.Ledger,
		session:  cfg.Session,
		audience: cfg.Audience,
		rdb:      cfg.Redis,
		log:      cfg.Log,
		loc:      cfg.Location,
		limits:   cfg.Limits,
		now:      cfg.Now,
	}
}

// Location returns the timezone poll dates are parsed and rendered in.
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Create posts the poll message, records the poll, then edits the message
// with the real content and voting buttons. The message goes out first so a
// storage failure cannot leave a phantom record; a message with no backing
// record is a rare, cleanable leftover.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*types.Poll, error) {
	msg, err := m.session.ChannelMessageSendComplex(req.ChannelID, &discordgo.MessageSend{
		Content: "📊 _Setting up the poll..._",
	})
	if err != nil {
		return nil, fmt.Errorf("send poll message: %w", err)
	}

	p := &types.Poll{
		MessageID:     msg.ID,
		ChannelID:     req.ChannelID,
		GuildID:       req.GuildID,
		Question:      req.Question,
		Options:       req.Options,
		Presence:      req.Presence,
		AllowMultiple: req.AllowMultiple,
		EventAt:       req.EventAt,
		Deadline:      req.Deadline,
	}
	if err := m.store.Create(p); err != nil {
		return nil, err
	}

	m.log.Infow("poll created",
		"poll", p.ID, "channel", p.ChannelID, "presence", p.Presence, "multiple", p.AllowMultiple)

	if err := m.edit(ctx, p, Components(p)); err != nil {
		// The poll exists and resume will reattach the buttons later.
		m.log.Errorw("initial poll render failed", "poll", p.ID, "error", err)
	}
	return p, nil
}

// HandleVote applies the single mutation rule for one voter interaction:
// pressing a recorded choice withdraws it; otherwise single-choice polls
// replace any previous vote and multiple-choice polls add alongside.
func (m *Manager) HandleVote(ctx context.Context, pollID uint64, userID string, choiceIdx int) (Outcome, error) {
	p, err := m.store.Get(pollID)
	if err != nil {
		return 0, err
	}
	if !p.Open(m.now()) {
		return OutcomeClosed, nil
	}

	choices := Choices(p)
	if choiceIdx < 0 || choiceIdx >= len(choices) {
		return 0, fmt.Errorf("poll %d has no choice %d", pollID, choiceIdx)
	}
	choice := choices[choiceIdx]

	existing, err := m.ledger.ListByVoter(pollID, userID)
	if err != nil {
		return 0, err
	}

	outcome := OutcomeRecorded
	held := false
	for _, v := range existing {
		if v.Choice == choice {
			held = true
			break
		}
	}

	switch {
	case held:
		if err := m.ledger.Retract(pollID, userID, choice); err != nil {
			return 0, err
		}
		outcome = OutcomeWithdrawn
	case p.AllowMultiple:
		if err := m.ledger.Record(pollID, userID, choice); err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			outcome = OutcomeAdded
		}
	default:
		if len(existing) > 0 {
			if err := m.ledger.RetractAll(pollID, userID); err != nil {
				return 0, err
			}
		}
		if err := m.ledger.Record(pollID, userID, choice); err != nil {
			return 0, err
		}
	}

	m.log.Infow("vote handled", "poll", pollID, "user", userID, "choice", choice, "outcome", outcome)

	// Refresh failures never roll back the vote.
	if err := m.Refresh(ctx, pollID); err != nil {
		m.log.Errorw("display refresh failed", "poll", pollID, "error", err)
	}
	return outcome, nil
}

// Refresh re-renders the poll message from the ledger. A deleted backing
// message self-heals by dropping the orphaned poll record.
func (m *Manager) Refresh(ctx context.Context, pollID uint64) error {
	p, err := m.store.Get(pollID)
	if err != nil {
		return err
	}
	return m.edit(ctx, p, nil)
}

// Close strips the voting buttons and re-renders with the closed marker.
func (m *Manager) Close(ctx context.Context, p *types.Poll) error {
	if m.rdb != nil {
		data.ForgetRender(ctx, m.rdb, p.ID)
	}
	return m.edit(ctx, p, []discordgo.MessageComponent{})
}

// Resume reattaches voting buttons to every open poll after a restart and
// drops polls whose backing message is confirmed gone. Returns the number of
// polls restored.
func (m *Manager) Resume(ctx context.Context) (int, error) {
	polls, err := m.store.ListOpen(m.now())
	if err != nil {
		return 0, err
	}

	restored := 0
	for i := range polls {
		p := &polls[i]
		if _, err := m.session.ChannelMessage(p.ChannelID, p.MessageID); err != nil {
			if isUnknownMessage(err) {
				m.log.Warnw("poll message gone, dropping poll", "poll", p.ID, "message", p.MessageID)
				if err := m.store.Delete(p.ID); err != nil {
					m.log.Errorw("orphan poll delete failed", "poll", p.ID, "error", err)
				}
				continue
			}
			m.log.Errorw("poll message fetch failed", "poll", p.ID, "error", err)
			continue
		}
		if err := m.edit(ctx, p, Components(p)); err != nil {
			m.log.Errorw("poll restore failed", "poll", p.ID, "error", err)
			continue
		}
		restored++
	}

	m.log.Infow("polls restored", "restored", restored, "open", len(polls))
	return restored, nil
}

// edit renders and pushes the poll message. components nil means leave the
// buttons as they are; an empty non-nil slice removes them.
func (m *Manager) edit(ctx context.Context, p *types.Poll, components []discordgo.MessageComponent) error {
	votes, err := m.ledger.List(p.ID)
	if err != nil {
		return err
	}

	var nonVoters []string
	members, err := m.audience.Resolve(ctx, p.GuildID, p.ChannelID)
	if err != nil {
		// Render without the non-voter section rather than failing the vote.
		m.log.Warnw("audience resolve failed", "poll", p.ID, "error", err)
	} else {
		voted := Voters(votes)
		for _, id := range members {
			if !voted[id] {
				nonVoters = append(nonVoters, id)
			}
		}
	}

	content := RenderContent(p, Aggregate(votes), nonVoters, m.loc, m.limits, m.now())

	if components == nil && m.rdb != nil && data.RenderUnchanged(ctx, m.rdb, p.ID, content) {
		return nil
	}

	edit := &discordgo.MessageEdit{
		ID:      p.MessageID,
		Channel: p.ChannelID,
		Content: &content,
	}
	if components != nil {
		edit.Components = &components
	}

	if _, err := m.session.ChannelMessageEditComplex(edit); err != nil {
		if isUnknownMessage(err) {
			m.log.Warnw("poll message gone, dropping poll", "poll", p.ID, "message", p.MessageID)
			if derr := m.store.Delete(p.ID); derr != nil {
				m.log.Errorw("orphan poll delete failed", "poll", p.ID, "error", derr)
			}
			if m.rdb != nil {
				data.ForgetRender(ctx, m.rdb, p.ID)
			}
			return nil
		}
		return fmt.Errorf("edit poll message: %w", err)
	}
	return nil
}

func isUnknownMessage(err error) bool {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		return rest.Message.Code == discordgo.ErrCodeUnknownMessage ||
			rest.Message.Code == discordgo.ErrCodeUnknownChannel
	}
	return false
}
