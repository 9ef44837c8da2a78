package webserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/JpegDev/poll-discord/src/shared/types"
)

type Store interface {
	List() ([]types.Poll, error)
	Get(id uint64) (*types.Poll, error)
	Delete(id uint64) error
}

type Ledger interface {
	List(pollID uint64) ([]types.Vote, error)
}

type Polls struct {
	store  Store
	ledger Ledger
	log    *zap.SugaredLogger
}

func NewPolls(store Store, ledger Ledger, log *zap.SugaredLogger) Polls {
	return Polls{store: store, ledger: ledger, log: log}
}

type pollSummary struct {
	ID        uint64     `json:"id"`
	Question  string     `json:"question"`
	Presence  bool       `json:"presence"`
	Open      bool       `json:"open"`
	EventAt   time.Time  `json:"eventAt"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Votes     int        `json:"votes"`
}

type pollDetail struct {
	pollSummary
	ChannelID     string              `json:"channelId"`
	MessageID     string              `json:"messageId"`
	AllowMultiple bool                `json:"allowMultiple"`
	Choices       []string            `json:"choices"`
	Tally         map[string][]string `json:"tally"`
}

func (h Polls) List(c *gin.Context) {
	polls, err := h.store.List()
	if err != nil {
		h.log.Errorw("list polls", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to list polls"})
		return
	}

	now := time.Now()
	out := make([]pollSummary, 0, len(polls))
	for i := range polls {
		p := &polls[i]
		votes, err := h.ledger.List(p.ID)
		if err != nil {
			h.log.Errorw("list votes", "poll", p.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to list polls"})
			return
		}
		out = append(out, summarize(p, len(votes), now))
	}
	c.JSON(http.StatusOK, gin.H{"polls": out})
}

func (h Polls) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid poll id"})
		return
	}

	p, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "poll not found"})
			return
		}
		h.log.Errorw("get poll", "poll", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to load poll"})
		return
	}

	votes, err := h.ledger.List(id)
	if err != nil {
		h.log.Errorw("list votes", "poll", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to load poll"})
		return
	}

	choices := p.Options
	if p.Presence {
		choices = []string{types.ChoicePresent, types.ChoiceWaiting, types.ChoiceAbsent}
	}
	byChoice := make(map[string][]string, len(choices))
	for _, choice := range choices {
		byChoice[choice] = []string{}
	}
	for _, v := range votes {
		byChoice[v.Choice] = append(byChoice[v.Choice], v.UserID)
	}

	c.JSON(http.StatusOK, pollDetail{
		pollSummary:   summarize(p, len(votes), time.Now()),
		ChannelID:     p.ChannelID,
		MessageID:     p.MessageID,
		AllowMultiple: p.AllowMultiple,
		Choices:       choices,
		Tally:         byChoice,
	})
}

func (h Polls) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid poll id"})
		return
	}

	if _, err := h.store.Get(id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "poll not found"})
			return
		}
		h.log.Errorw("get poll", "poll", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to delete poll"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.log.Errorw("delete poll", "poll", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to delete poll"})
		return
	}

	h.log.Infow("poll deleted", "poll", id)
	c.Status(http.StatusNoContent)
}

func summarize(p *types.Poll, votes int, now time.Time) pollSummary {
	return pollSummary{
		ID:        p.ID,
		Question:  p.Question,
		Presence:  p.Presence,
		Open:      p.Open(now),
		EventAt:   p.EventAt,
		Deadline:  p.Deadline,
		CreatedAt: p.CreatedAt,
		Votes:     votes,
	}
}
