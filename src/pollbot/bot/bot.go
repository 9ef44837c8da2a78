package bot

import (
	"context"

	"github.com/JpegDev/poll-discord/src/pollbot/components/poll"
	"github.com/JpegDev/poll-discord/src/pollbot/config"
	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Discord config.Discord
	Limits  config.Limits
	Store   *data.PollStore
	Ledger  *data.VoteLedger
	Redis   *redis.Client
	Log     *zap.SugaredLogger
}

// Bot owns the gateway session and routes interactions to the poll manager.
type Bot struct {
	session *discordgo.Session
	cfg     Config
	manager *poll.Manager
	log     *zap.SugaredLogger
}

func New(cfg Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, err
	}

	b := &Bot{session: dg, cfg: cfg, log: cfg.Log}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleInteraction)
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	return b, nil
}

// Session exposes the raw session for components that talk to Discord.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// SetManager wires in the poll manager. The manager needs the session, which
// the bot owns, so it is attached after construction and before Start.
func (b *Bot) SetManager(m *poll.Manager) {
	b.manager = m
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Infow("discord session ready", "user", event.User.Username)

	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, b.cfg.Discord.GuildID, commands(b.cfg.Limits.MaxOptions)); err != nil {
		b.log.Errorw("slash command registration failed", "error", err)
	}

	// Reattach voting buttons to polls that survived the restart.
	go func() {
		if _, err := b.manager.Resume(context.Background()); err != nil {
			b.log.Errorw("poll resume failed", "error", err)
		}
	}()
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "poll":
			b.handlePollCommand(s, i)
		case "polls":
			b.handleListCommand(s, i)
		}
	case discordgo.InteractionModalSubmit:
		b.handleDatesModal(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleVoteButton(s, i)
	}
}

// interactionUser works for both guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
