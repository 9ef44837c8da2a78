package poll

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = mustLocation("Europe/Paris")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestParseDateDateOnly(t *testing.T) {
	got, err := ParseDate("25/12/2026", paris)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, paris), got)
}

func TestParseDateWithTime(t *testing.T) {
	got, err := ParseDate("25/12/2026-18:30", paris)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 25, 18, 30, 0, 0, paris), got)
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"2026-12-25", "25/13/2026", "tomorrow", ""} {
		_, err := ParseDate(in, paris)
		assert.Error(t, err, in)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func validRequest() CreateRequest {
	return CreateRequest{
		GuildID:   "g1",
		ChannelID: "c1",
		Question:  "Where do we eat?",
		Options:   []string{"pizza", "sushi"},
		EventAt:   time.Date(2026, 9, 10, 19, 0, 0, 0, paris),
	}
}

var validateNow = time.Date(2026, 9, 1, 12, 0, 0, 0, paris)

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate(validateNow, 20, 730))
}

func TestValidatePresenceForcesSingleChoice(t *testing.T) {
	req := validRequest()
	req.Presence = true
	req.Options = nil
	req.AllowMultiple = true

	require.NoError(t, req.Validate(validateNow, 20, 730))
	assert.False(t, req.AllowMultiple)
}

func TestValidatePresenceRejectsCustomOptions(t *testing.T) {
	req := validRequest()
	req.Presence = true
	assert.Error(t, req.Validate(validateNow, 20, 730))
}

func TestValidateChoiceCount(t *testing.T) {
	req := validRequest()
	req.Options = []string{"only one"}
	assert.Error(t, req.Validate(validateNow, 20, 730))

	req = validRequest()
	req.Options = make([]string, 21)
	for i := range req.Options {
		req.Options[i] = strings.Repeat("x", i+1)
	}
	assert.Error(t, req.Validate(validateNow, 20, 730))
}

func TestValidateRejectsDuplicateAndEmptyChoices(t *testing.T) {
	req := validRequest()
	req.Options = []string{"pizza", "pizza"}
	assert.Error(t, req.Validate(validateNow, 20, 730))

	req = validRequest()
	req.Options = []string{"pizza", "   "}
	assert.Error(t, req.Validate(validateNow, 20, 730))
}

func TestValidateRejectsOverlongChoice(t *testing.T) {
	req := validRequest()
	req.Options = []string{"pizza", strings.Repeat("x", 81)}
	assert.Error(t, req.Validate(validateNow, 20, 730))

	// The label limit counts characters: 80 accented chars are fine even
	// though they exceed 80 bytes.
	req = validRequest()
	req.Options = []string{"pizza", strings.Repeat("é", 80)}
	assert.NoError(t, req.Validate(validateNow, 20, 730))

	req = validRequest()
	req.Options = []string{"pizza", strings.Repeat("é", 81)}
	assert.Error(t, req.Validate(validateNow, 20, 730))
}

func TestValidateRejectsPastAndFarFutureEvents(t *testing.T) {
	req := validRequest()
	req.EventAt = validateNow.Add(-time.Hour)
	assert.Error(t, req.Validate(validateNow, 20, 730))

	req = validRequest()
	req.EventAt = validateNow.AddDate(3, 0, 0)
	assert.Error(t, req.Validate(validateNow, 20, 730))
}

func TestValidateDeadlineMustPrecedeEvent(t *testing.T) {
	req := validRequest()
	dl := req.EventAt.Add(time.Hour)
	req.Deadline = &dl
	assert.Error(t, req.Validate(validateNow, 20, 730))

	req = validRequest()
	dl = validateNow.Add(-time.Hour)
	req.Deadline = &dl
	assert.Error(t, req.Validate(validateNow, 20, 730))

	req = validRequest()
	dl = req.EventAt.Add(-24 * time.Hour)
	req.Deadline = &dl
	assert.NoError(t, req.Validate(validateNow, 20, 730))
}

func TestValidateStripsMarkup(t *testing.T) {
	req := validRequest()
	req.Question = "<script>alert(1)</script>Where do we eat?"
	require.NoError(t, req.Validate(validateNow, 20, 730))
	assert.Equal(t, "Where do we eat?", req.Question)
}
