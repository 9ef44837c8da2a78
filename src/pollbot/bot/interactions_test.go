package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseVoteID(t *testing.T) {
	id, idx, ok := parseVoteID("vote:42:3")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, 3, idx)

	for _, in := range []string{"vote:42", "vote:x:3", "vote:42:x", "other:1:2", ""} {
		_, _, ok := parseVoteID(in)
		assert.False(t, ok, in)
	}
}

func TestCommandsDeclareChoices(t *testing.T) {
	cmds := commands(20)
	assert.Len(t, cmds, 2)

	var pollCmd *discordgo.ApplicationCommand
	for _, c := range cmds {
		if c.Name == "poll" {
			pollCmd = c
		}
	}
	assert.NotNil(t, pollCmd)

	choices := 0
	for _, opt := range pollCmd.Options {
		if opt.Name == "question" {
			assert.True(t, opt.Required)
		}
		if len(opt.Name) > 6 && opt.Name[:6] == "choice" {
			choices++
		}
	}
	assert.Equal(t, 20, choices)
}

func TestClipCountsCharactersNotBytes(t *testing.T) {
	assert.Equal(t, "short", clip("short", 40))

	long := strings.Repeat("é", 50)
	got := clip(long, 40)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 40), got)
}

func TestModalValue(t *testing.T) {
	md := discordgo.ModalSubmitInteractionData{
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "event_date", Value: "25/12/2026"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "deadline", Value: ""},
			}},
		},
	}

	assert.Equal(t, "25/12/2026", modalValue(md, "event_date"))
	assert.Equal(t, "", modalValue(md, "deadline"))
	assert.Equal(t, "", modalValue(md, "missing"))
}
