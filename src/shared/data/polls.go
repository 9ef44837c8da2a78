package data

import (
	"errors"
	"fmt"
	"time"

	"github.com/JpegDev/poll-discord/src/shared/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a poll id has no backing record.
var ErrNotFound = errors.New("poll not found")

// PollStore owns the polls table and the notification ledger.
type PollStore struct {
	db *gorm.DB
}

func NewPollStore(db *gorm.DB) *PollStore {
	return &PollStore{db: db}
}

func (s *PollStore) Create(p *types.Poll) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("create poll: %w", err)
	}
	return nil
}

func (s *PollStore) Get(id uint64) (*types.Poll, error) {
	var p types.Poll
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get poll %d: %w", id, err)
	}
	return &p, nil
}

func (s *PollStore) List() ([]types.Poll, error) {
	var polls []types.Poll
	if err := s.db.Order("id ASC").Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	return polls, nil
}

// ListOpen returns polls whose voting deadline has not passed. Polls without
// a deadline stay open until deleted.
func (s *PollStore) ListOpen(now time.Time) ([]types.Poll, error) {
	var polls []types.Poll
	err := s.db.Where("deadline IS NULL OR deadline > ?", now).
		Order("id ASC").
		Find(&polls).Error
	if err != nil {
		return nil, fmt.Errorf("list open polls: %w", err)
	}
	return polls, nil
}

// Delete removes a poll with its votes and reminder records. The explicit
// transaction covers installations whose tables predate the FK constraints.
func (s *PollStore) Delete(id uint64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(&types.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&types.ReminderRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&types.Poll{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete poll %d: %w", id, err)
	}
	return nil
}

func (s *PollStore) ReminderFired(pollID uint64, kind string) (bool, error) {
	var count int64
	err := s.db.Model(&types.ReminderRecord{}).
		Where("poll_id = ? AND kind = ?", pollID, kind).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("reminder fired %d/%s: %w", pollID, kind, err)
	}
	return count > 0, nil
}

// MarkReminderFired records that a reminder kind fired for a poll. A
// concurrent or repeated mark hits the composite primary key and collapses
// into a no-op, which callers treat identically to "already sent".
func (s *PollStore) MarkReminderFired(pollID uint64, kind string) error {
	rec := types.ReminderRecord{PollID: pollID, Kind: kind, SentAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("mark reminder %d/%s: %w", pollID, kind, err)
	}
	return nil
}
