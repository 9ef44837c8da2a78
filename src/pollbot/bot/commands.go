package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JpegDev/poll-discord/src/pollbot/components/poll"
	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/bwmarrin/discordgo"
)

const datesModalID = "poll_dates"

// commands declares the slash command surface: /poll mirrors the classic
// twenty-choice layout, /polls is the admin status view.
func commands(maxChoices int) []*discordgo.ApplicationCommand {
	adminOnly := int64(discordgo.PermissionAdministrator)

	pollOptions := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "question",
			Description: "The poll question",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "single",
			Description: "Single choice (default: multiple choices allowed)",
		},
	}
	for n := 1; n <= maxChoices; n++ {
		pollOptions = append(pollOptions, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        fmt.Sprintf("choice%d", n),
			Description: fmt.Sprintf("Choice %d (leave all empty for a Present/Waiting/Absent poll)", n),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "poll",
			Description: "Create a poll for a scheduled event",
			Options:     pollOptions,
		},
		{
			Name:                     "polls",
			Description:              "Show the status of known polls (admin)",
			DefaultMemberPermissions: &adminOnly,
		},
	}
}

// pendingCreate is what we stash between /poll and its date modal.
type pendingCreate struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	Presence      bool     `json:"presence"`
	AllowMultiple bool     `json:"allow_multiple"`
}

func (b *Bot) handlePollCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var (
		question = "Available?"
		single   bool
		options  []string
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch {
		case opt.Name == "question":
			question = opt.StringValue()
		case opt.Name == "single":
			single = opt.BoolValue()
		case strings.HasPrefix(opt.Name, "choice"):
			if v := strings.TrimSpace(opt.StringValue()); v != "" {
				options = append(options, v)
			}
		}
	}

	presence := len(options) == 0
	if !presence && len(options) < 2 {
		respondEphemeral(s, i, "❌ A custom poll needs at least 2 choices")
		return
	}

	pending := pendingCreate{
		Question: question,
		Options:  options,
		Presence: presence,
		// Presence polls are always single-choice; custom polls default to multiple.
		AllowMultiple: !presence && !single,
	}
	user := interactionUser(i)
	if err := data.StashPending(context.Background(), b.cfg.Redis, user.ID, pending); err != nil {
		b.log.Errorw("pending poll stash failed", "user", user.ID, "error", err)
		respondEphemeral(s, i, "❌ Something went wrong, try again")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: datesModalID,
			Title:    "📅 Event dates",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "event_date",
						Label:       "Event date",
						Placeholder: "e.g. 25/12/2026 or 25/12/2026-20:00",
						Style:       discordgo.TextInputShort,
						Required:    true,
						MaxLength:   16,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "deadline",
						Label:       "Voting deadline (optional)",
						Placeholder: "e.g. 24/12/2026-18:00",
						Style:       discordgo.TextInputShort,
						Required:    false,
						MaxLength:   16,
					},
				}},
			},
		},
	})
	if err != nil {
		b.log.Errorw("date modal failed", "error", err)
	}
}

func (b *Bot) handleDatesModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	md := i.ModalSubmitData()
	if md.CustomID != datesModalID {
		return
	}
	user := interactionUser(i)

	var pending pendingCreate
	if err := data.TakePending(context.Background(), b.cfg.Redis, user.ID, &pending); err != nil {
		respondEphemeral(s, i, "❌ This poll setup expired, run /poll again")
		return
	}

	loc := b.manager.Location()
	eventAt, err := poll.ParseDate(modalValue(md, "event_date"), loc)
	if err != nil {
		respondEphemeral(s, i, "❌ "+err.Error())
		return
	}

	var deadline *time.Time
	if raw := strings.TrimSpace(modalValue(md, "deadline")); raw != "" {
		d, err := poll.ParseDate(raw, loc)
		if err != nil {
			respondEphemeral(s, i, "❌ "+err.Error())
			return
		}
		deadline = &d
	}

	req := poll.CreateRequest{
		GuildID:       i.GuildID,
		ChannelID:     i.ChannelID,
		Question:      pending.Question,
		Options:       pending.Options,
		Presence:      pending.Presence,
		AllowMultiple: pending.AllowMultiple,
		EventAt:       eventAt,
		Deadline:      deadline,
	}
	if err := req.Validate(time.Now(), b.cfg.Limits.MaxOptions, b.cfg.Limits.MaxEventDaysAhead); err != nil {
		respondEphemeral(s, i, "❌ "+err.Error())
		return
	}

	p, err := b.manager.Create(context.Background(), req)
	if err != nil {
		b.log.Errorw("poll creation failed", "user", user.ID, "error", err)
		respondEphemeral(s, i, "❌ Could not create the poll")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ Poll #%d created", p.ID))
}

// clip shortens s to at most max characters, never splitting a rune.
func clip(s string, max int) string {
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max])
	}
	return s
}

func modalValue(md discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range md.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if in, ok := c.(*discordgo.TextInput); ok && in.CustomID == customID {
				return in.Value
			}
		}
	}
	return ""
}

func (b *Bot) handleListCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	polls, err := b.cfg.Store.List()
	if err != nil {
		b.log.Errorw("poll listing failed", "error", err)
		respondEphemeral(s, i, "❌ Could not list polls")
		return
	}
	if len(polls) == 0 {
		respondEphemeral(s, i, "No polls on record")
		return
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("📊 **Known polls:**\n")
	for _, p := range polls {
		status := "🟢 Open"
		if !p.Open(now) {
			status = "🔴 Closed"
		}
		mode := "single"
		if p.AllowMultiple {
			mode = "multiple"
		}
		fmt.Fprintf(&sb, "\n%s #%d — %s (%s)", status, p.ID, clip(p.Question, 40), mode)
	}
	respondEphemeral(s, i, sb.String())
}
