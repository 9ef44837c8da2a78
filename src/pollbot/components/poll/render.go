package poll

import (
	"fmt"
	"strings"
	"time"

	"github.com/JpegDev/poll-discord/src/shared/types"
	"github.com/bwmarrin/discordgo"
)

// Letter emojis for custom choices, in option order.
var choiceEmojis = []string{
	"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯",
	"🇰", "🇱", "🇲", "🇳", "🇴", "🇵", "🇶", "🇷", "🇸", "🇹",
}

var presenceDisplay = map[string]string{
	types.ChoicePresent: "✅ Present",
	types.ChoiceWaiting: "⏳ Waiting",
	types.ChoiceAbsent:  "❌ Absent",
}

var presenceEmoji = map[string]string{
	types.ChoicePresent: "✅",
	types.ChoiceWaiting: "⏳",
	types.ChoiceAbsent:  "❌",
}

var presenceStyle = map[string]discordgo.ButtonStyle{
	types.ChoicePresent: discordgo.SuccessButton,
	types.ChoiceWaiting: discordgo.SecondaryButton,
	types.ChoiceAbsent:  discordgo.DangerButton,
}

// RenderLimits is the display policy: how many mentions to spell out and how
// long the whole message may get before truncation.
type RenderLimits struct {
	MaxMentions      int
	MaxContentLength int
}

// RenderContent builds the poll message body: per-choice tallies with voter
// mentions, the non-voter and waiting sections, and the date footer. Content
// over the platform limit is truncated with an ellipsis rather than rejected.
func RenderContent(p *types.Poll, t Tally, nonVoters []string, loc *time.Location, limits RenderLimits, now time.Time) string {
	var b strings.Builder

	mode := ""
	if !p.Presence {
		if p.AllowMultiple {
			mode = " ☑️ Multiple choice"
		} else {
			mode = " 🔘 Single choice"
		}
	}
	fmt.Fprintf(&b, "# 📊 %s%s\n\n", p.Question, mode)

	if p.Presence {
		for _, choice := range Choices(p) {
			voters := t[choice]
			fmt.Fprintf(&b, "**%s (%d)**\n%s\n\n", presenceDisplay[choice], len(voters), mentionList(voters, limits.MaxMentions))
		}
	} else {
		for i, label := range p.Options {
			voters := t[label]
			fmt.Fprintf(&b, "**%s %s (%d)**\n%s\n\n", choiceEmojis[i], label, len(voters), mentionList(voters, limits.MaxMentions))
		}
	}

	if len(nonVoters) > 0 {
		fmt.Fprintf(&b, "**❓ Not voted (%d)**\n%s\n\n", len(nonVoters), mentionList(nonVoters, limits.MaxMentions))
	}
	if waiting := t[types.ChoiceWaiting]; p.Presence && len(waiting) > 0 {
		fmt.Fprintf(&b, "**⏳ Awaiting confirmation (%d)**\n%s\n\n", len(waiting), mentionList(waiting, limits.MaxMentions))
	}

	fmt.Fprintf(&b, "**📅 Event:** %s", p.EventAt.In(loc).Format("02/01/2006 at 15:04"))
	if p.Deadline != nil {
		fmt.Fprintf(&b, "\n**⏰ Voting deadline:** %s", p.Deadline.In(loc).Format("02/01/2006 at 15:04"))
	}
	if !p.Open(now) {
		b.WriteString("\n\n🔒 **Voting is closed**")
	}

	content := b.String()
	// Discord's limit counts characters, not bytes.
	if runes := []rune(content); len(runes) > limits.MaxContentLength {
		content = string(runes[:limits.MaxContentLength-3]) + "..."
	}
	return content
}

func mentionList(ids []string, max int) string {
	if len(ids) == 0 {
		return "_None_"
	}
	shown := ids
	if len(shown) > max {
		shown = shown[:max]
	}
	mentions := make([]string, len(shown))
	for i, id := range shown {
		mentions[i] = "<@" + id + ">"
	}
	out := strings.Join(mentions, ", ")
	if rest := len(ids) - max; rest > 0 {
		out += fmt.Sprintf(" _and %d others..._", rest)
	}
	return out
}

// Components builds the voting buttons, five per row. The custom id encodes
// the poll id and the choice index; no state is captured in the handler.
func Components(p *types.Poll) []discordgo.MessageComponent {
	choices := Choices(p)

	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for i, choice := range choices {
		row = append(row, button(p, i, choice))
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func button(p *types.Poll, idx int, choice string) discordgo.Button {
	customID := fmt.Sprintf("vote:%d:%d", p.ID, idx)

	if p.Presence {
		label := strings.SplitN(presenceDisplay[choice], " ", 2)[1]
		return discordgo.Button{
			Label:    label,
			Style:    presenceStyle[choice],
			CustomID: customID,
			Emoji:    &discordgo.ComponentEmoji{Name: presenceEmoji[choice]},
		}
	}
	return discordgo.Button{
		Label:    choice,
		Style:    discordgo.PrimaryButton,
		CustomID: customID,
		Emoji:    &discordgo.ComponentEmoji{Name: choiceEmojis[idx]},
	}
}
