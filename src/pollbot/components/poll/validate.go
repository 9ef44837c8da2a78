package poll

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Discord caps button labels at 80 characters.
const maxChoiceLabelLength = 80

var sanitizer = bluemonday.StrictPolicy()

// ValidationError is a user-caused input problem. It is surfaced verbatim as
// an ephemeral reply and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ParseDate accepts dd/mm/yyyy or dd/mm/yyyy-HH:MM in the given location.
// The date-only form means midnight.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout := "02/01/2006"
	if strings.Contains(s, "-") {
		layout = "02/01/2006-15:04"
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, validationf("invalid date %q, use dd/mm/yyyy or dd/mm/yyyy-HH:MM", s)
	}
	return t, nil
}

// CreateRequest carries everything needed to create a poll. Question and
// options arrive straight from user input and are sanitized here.
type CreateRequest struct {
	GuildID       string
	ChannelID     string
	Question      string
	Options       []string
	Presence      bool
	AllowMultiple bool
	EventAt       time.Time
	Deadline      *time.Time
}

// Validate normalizes the request in place and rejects anything the poll
// store must never see: past dates, deadline after the event, too few or too
// many choices.
func (r *CreateRequest) Validate(now time.Time, maxOptions, maxDaysAhead int) error {
	r.Question = strings.TrimSpace(sanitizer.Sanitize(r.Question))
	if r.Question == "" {
		return validationf("the question cannot be empty")
	}

	if r.Presence {
		if len(r.Options) != 0 {
			return validationf("a presence poll has a fixed choice set")
		}
		// Presence polls are always single-choice.
		r.AllowMultiple = false
	} else {
		if len(r.Options) < 2 {
			return validationf("a custom poll needs at least 2 choices")
		}
		if len(r.Options) > maxOptions {
			return validationf("too many choices, the maximum is %d", maxOptions)
		}
		seen := make(map[string]bool, len(r.Options))
		for i, opt := range r.Options {
			opt = strings.TrimSpace(sanitizer.Sanitize(opt))
			if opt == "" {
				return validationf("choice %d is empty", i+1)
			}
			if utf8.RuneCountInString(opt) > maxChoiceLabelLength {
				return validationf("choice %d is longer than %d characters", i+1, maxChoiceLabelLength)
			}
			if seen[opt] {
				return validationf("duplicate choice %q", opt)
			}
			seen[opt] = true
			r.Options[i] = opt
		}
	}

	if r.EventAt.Before(now) {
		return validationf("the event date cannot be in the past")
	}
	if r.EventAt.Sub(now) > time.Duration(maxDaysAhead)*24*time.Hour {
		return validationf("the event cannot be more than %d days ahead", maxDaysAhead)
	}
	if r.Deadline != nil {
		if r.Deadline.Before(now) {
			return validationf("the voting deadline cannot be in the past")
		}
		if r.Deadline.After(r.EventAt) {
			return validationf("the voting deadline must be before the event date")
		}
	}

	return nil
}
