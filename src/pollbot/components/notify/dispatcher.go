// Package notify delivers reminder direct messages, one per recipient,
// tolerating partial failure.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/JpegDev/poll-discord/src/shared/types"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Session is the slice of discordgo the dispatcher needs.
type Session interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Dispatcher struct {
	session Session
	loc     *time.Location
	log     *zap.SugaredLogger
}

func NewDispatcher(session Session, loc *time.Location, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{session: session, loc: loc, log: log}
}

// Notify DMs every recipient. body builds the per-recipient message text; the
// poll question, event date, and jump link are appended here. A recipient who
// cannot be reached (DMs disabled, left the guild) is skipped and counted,
// never escalated. Returns the number of successful deliveries.
func (d *Dispatcher) Notify(ctx context.Context, p *types.Poll, recipients []string, body func(userID string) string) int {
	footer := fmt.Sprintf("\n\n**%s**\n📅 Event: %s\n👉 %s",
		p.Question,
		p.EventAt.In(d.loc).Format("02/01/2006 at 15:04"),
		jumpLink(p))

	sent := 0
	for _, userID := range recipients {
		select {
		case <-ctx.Done():
			return sent
		default:
		}

		ch, err := d.session.UserChannelCreate(userID)
		if err != nil {
			d.log.Debugw("dm channel unavailable", "poll", p.ID, "user", userID, "error", err)
			continue
		}
		if _, err := d.session.ChannelMessageSend(ch.ID, body(userID)+footer); err != nil {
			d.log.Debugw("dm delivery failed", "poll", p.ID, "user", userID, "error", err)
			continue
		}
		sent++
	}

	d.log.Infow("notification batch delivered", "poll", p.ID, "sent", sent, "recipients", len(recipients))
	return sent
}

func jumpLink(p *types.Poll) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", p.GuildID, p.ChannelID, p.MessageID)
}
