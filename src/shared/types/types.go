package types

import "time"

// Presence poll choices. A poll with no custom options uses exactly these
// three, always single-choice.
const (
	ChoicePresent = "present"
	ChoiceWaiting = "waiting"
	ChoiceAbsent  = "absent"
)

// Reminder kinds recorded in the notification ledger. Weekly and non-voter
// kinds carry a cycle suffix (weekly_3, non_voters_day_4).
const (
	ReminderClosed         = "closed"
	ReminderDeadlineMinus2 = "deadline_minus_2"
	ReminderDeadlineMinus1 = "deadline_minus_1"
)

// Poll is a schedulable question posted as a single Discord message. The
// record is never structurally mutated after creation; its open/closed state
// derives from Deadline vs. the current time.
type Poll struct {
	ID            uint64    `gorm:"primaryKey"`
	MessageID     string    `gorm:"size:64;uniqueIndex"`
	ChannelID     string    `gorm:"size:64;not null"`
	GuildID       string    `gorm:"size:64;not null"`
	Question      string    `gorm:"size:512;not null"`
	Options       []string  `gorm:"serializer:json;type:text"`
	Presence      bool      `gorm:"default:false"`
	AllowMultiple bool      `gorm:"default:false"`
	EventAt       time.Time `gorm:"not null"`
	Deadline      *time.Time
	CreatedAt     time.Time

	Votes     []Vote           `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`
	Reminders []ReminderRecord `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`
}

// Open reports whether the poll still accepts votes at the given instant.
func (p *Poll) Open(now time.Time) bool {
	return p.Deadline == nil || now.Before(*p.Deadline)
}

// Vote is one (poll, voter, choice) fact. The composite primary key is the
// uniqueness invariant: a voter holds at most one row per distinct choice.
type Vote struct {
	PollID uint64 `gorm:"primaryKey;autoIncrement:false"`
	UserID string `gorm:"primaryKey;size:64"`
	Choice string `gorm:"primaryKey;size:128"`
}

// ReminderRecord marks a reminder kind as fired for a poll. The composite
// primary key is what makes reminder delivery exactly-once: a second insert
// for the same (poll, kind) is a duplicate-key no-op.
type ReminderRecord struct {
	PollID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Kind   string `gorm:"primaryKey;size:64"`
	SentAt time.Time
}
