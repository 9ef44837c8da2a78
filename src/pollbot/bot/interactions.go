package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/JpegDev/poll-discord/src/pollbot/components/poll"
	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/bwmarrin/discordgo"
)

// handleVoteButton dispatches a button press. The custom id carries the poll
// id and choice index; everything else is looked up from storage, so stale
// buttons on old messages stay valid across restarts.
func (b *Bot) handleVoteButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	pollID, choiceIdx, ok := parseVoteID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	user := interactionUser(i)

	outcome, err := b.manager.HandleVote(context.Background(), pollID, user.ID, choiceIdx)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			respondEphemeral(s, i, "❌ This poll no longer exists")
			return
		}
		b.log.Errorw("vote handling failed", "poll", pollID, "user", user.ID, "error", err)
		respondEphemeral(s, i, "❌ Could not record your vote")
		return
	}

	switch outcome {
	case poll.OutcomeClosed:
		respondEphemeral(s, i, "🔒 Voting is closed for this poll")
	case poll.OutcomeWithdrawn:
		respondEphemeral(s, i, "✅ Vote withdrawn")
	case poll.OutcomeAdded:
		respondEphemeral(s, i, "✅ Vote added (multiple choice)")
	default:
		respondEphemeral(s, i, "✅ Vote recorded")
	}
}

func parseVoteID(customID string) (pollID uint64, choiceIdx int, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != "vote" {
		return 0, 0, false
	}
	pollID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	choiceIdx, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return pollID, choiceIdx, true
}
