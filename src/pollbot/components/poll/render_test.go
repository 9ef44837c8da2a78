package poll

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JpegDev/poll-discord/src/shared/types"
)

var renderLimits = RenderLimits{MaxMentions: 20, MaxContentLength: 2000}

func renderPoll() *types.Poll {
	return &types.Poll{
		ID:       7,
		Question: "Game night?",
		Options:  []string{"friday", "saturday"},
		EventAt:  time.Date(2026, 9, 12, 20, 0, 0, 0, paris),
	}
}

func TestRenderContentShowsTalliesAndMentions(t *testing.T) {
	p := renderPoll()
	tally := Tally{"friday": {"u1", "u2"}, "saturday": {"u3"}}

	out := RenderContent(p, tally, []string{"u4"}, paris, renderLimits, validateNow)

	assert.Contains(t, out, "# 📊 Game night?")
	assert.Contains(t, out, "friday (2)")
	assert.Contains(t, out, "saturday (1)")
	assert.Contains(t, out, "<@u1>, <@u2>")
	assert.Contains(t, out, "**❓ Not voted (1)**")
	assert.Contains(t, out, "<@u4>")
	assert.Contains(t, out, "**📅 Event:** 12/09/2026 at 20:00")
	assert.NotContains(t, out, "Voting is closed")
}

func TestRenderContentTruncatesMentionList(t *testing.T) {
	p := renderPoll()
	voters := make([]string, 25)
	for i := range voters {
		voters[i] = fmt.Sprintf("u%d", i)
	}

	out := RenderContent(p, Tally{"friday": voters}, nil, paris, renderLimits, validateNow)

	assert.Contains(t, out, "_and 5 others..._")
	assert.NotContains(t, out, "<@u20>")
}

func TestRenderContentClosedMarker(t *testing.T) {
	p := renderPoll()
	dl := validateNow.Add(-time.Hour)
	p.Deadline = &dl

	out := RenderContent(p, Tally{}, nil, paris, renderLimits, validateNow)

	assert.Contains(t, out, "🔒 **Voting is closed**")
	assert.Contains(t, out, "**⏰ Voting deadline:**")
}

func TestRenderContentCapsLength(t *testing.T) {
	p := renderPoll()
	p.Question = strings.Repeat("q", 3000)

	out := RenderContent(p, Tally{}, nil, paris, renderLimits, validateNow)

	assert.LessOrEqual(t, utf8.RuneCountInString(out), 2000)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestRenderContentCapCountsCharactersNotBytes(t *testing.T) {
	// 1200 three-byte chars fit the 2000-character limit even though the
	// byte count is far beyond it.
	p := renderPoll()
	p.Question = strings.Repeat("€", 1200)

	out := RenderContent(p, Tally{}, nil, paris, renderLimits, validateNow)

	assert.True(t, utf8.ValidString(out))
	assert.NotContains(t, out, "...")
	assert.Contains(t, out, p.Question)
}

func TestRenderContentTruncatesOnRuneBoundary(t *testing.T) {
	p := renderPoll()
	p.Question = strings.Repeat("é", 3000)

	out := RenderContent(p, Tally{}, nil, paris, renderLimits, validateNow)

	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, utf8.RuneCountInString(out), 2000)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestRenderContentPresenceSections(t *testing.T) {
	p := &types.Poll{
		ID:       8,
		Question: "Training on Tuesday",
		Presence: true,
		EventAt:  time.Date(2026, 9, 15, 19, 0, 0, 0, paris),
	}
	tally := Tally{
		types.ChoicePresent: {"u1"},
		types.ChoiceWaiting: {"u2"},
	}

	out := RenderContent(p, tally, nil, paris, renderLimits, validateNow)

	assert.Contains(t, out, "**✅ Present (1)**")
	assert.Contains(t, out, "**⏳ Waiting (1)**")
	assert.Contains(t, out, "**❌ Absent (0)**")
	assert.Contains(t, out, "**⏳ Awaiting confirmation (1)**")
	assert.NotContains(t, out, "choice")
}

func TestComponentsRowsOfFive(t *testing.T) {
	p := renderPoll()
	p.Options = []string{"a", "b", "c", "d", "e", "f", "g"}

	rows := Components(p)

	require.Len(t, rows, 2)
	first := rows[0].(discordgo.ActionsRow)
	second := rows[1].(discordgo.ActionsRow)
	assert.Len(t, first.Components, 5)
	assert.Len(t, second.Components, 2)

	btn := first.Components[0].(discordgo.Button)
	assert.Equal(t, "vote:7:0", btn.CustomID)
	assert.Equal(t, "a", btn.Label)
}

func TestComponentsPresenceButtons(t *testing.T) {
	p := &types.Poll{ID: 9, Presence: true}

	rows := Components(p)

	require.Len(t, rows, 1)
	row := rows[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 3)

	present := row.Components[0].(discordgo.Button)
	assert.Equal(t, "Present", present.Label)
	assert.Equal(t, discordgo.SuccessButton, present.Style)
	assert.Equal(t, "vote:9:0", present.CustomID)
}
