package data

import (
	"fmt"

	"github.com/JpegDev/poll-discord/src/shared/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteLedger owns the votes table. All operations are idempotent: recording
// a present vote or retracting an absent one is a no-op, not an error.
type VoteLedger struct {
	db *gorm.DB
}

func NewVoteLedger(db *gorm.DB) *VoteLedger {
	return &VoteLedger{db: db}
}

func (l *VoteLedger) Record(pollID uint64, userID, choice string) error {
	vote := types.Vote{PollID: pollID, UserID: userID, Choice: choice}
	err := l.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote).Error
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	return nil
}

func (l *VoteLedger) Retract(pollID uint64, userID, choice string) error {
	err := l.db.Where("poll_id = ? AND user_id = ? AND choice = ?", pollID, userID, choice).
		Delete(&types.Vote{}).Error
	if err != nil {
		return fmt.Errorf("retract vote: %w", err)
	}
	return nil
}

// RetractAll drops every vote a voter holds on a poll. Used for the
// single-choice replace step.
func (l *VoteLedger) RetractAll(pollID uint64, userID string) error {
	err := l.db.Where("poll_id = ? AND user_id = ?", pollID, userID).
		Delete(&types.Vote{}).Error
	if err != nil {
		return fmt.Errorf("retract votes: %w", err)
	}
	return nil
}

func (l *VoteLedger) List(pollID uint64) ([]types.Vote, error) {
	var votes []types.Vote
	if err := l.db.Where("poll_id = ?", pollID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

func (l *VoteLedger) ListByVoter(pollID uint64, userID string) ([]types.Vote, error) {
	var votes []types.Vote
	err := l.db.Where("poll_id = ? AND user_id = ?", pollID, userID).Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("list voter votes: %w", err)
	}
	return votes, nil
}
