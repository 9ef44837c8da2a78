package poll

import "github.com/JpegDev/poll-discord/src/shared/types"

// Tally maps a choice label to the voters who picked it, in discovery order
// of the ledger rows. Order is stable within one aggregation pass only.
type Tally map[string][]string

func (t Tally) Count(choice string) int {
	return len(t[choice])
}

// Choices returns the poll's effective choice set: the fixed presence triple
// or the custom labels, in display order.
func Choices(p *types.Poll) []string {
	if p.Presence {
		return []string{types.ChoicePresent, types.ChoiceWaiting, types.ChoiceAbsent}
	}
	return p.Options
}

// Aggregate groups a poll's ledger rows into a tally.
func Aggregate(votes []types.Vote) Tally {
	t := make(Tally)
	for _, v := range votes {
		t[v.Choice] = append(t[v.Choice], v.UserID)
	}
	return t
}

// Voters returns the set of user ids holding at least one vote.
func Voters(votes []types.Vote) map[string]bool {
	set := make(map[string]bool, len(votes))
	for _, v := range votes {
		set[v.UserID] = true
	}
	return set
}

// Awaiting computes the awaiting-response set relative to an audience:
// members with no vote at all, plus, for presence polls, members whose
// answer is still "waiting". Audience order is preserved.
func Awaiting(p *types.Poll, votes []types.Vote, audience []string) []string {
	voted := Voters(votes)

	waiting := make(map[string]bool)
	if p.Presence {
		for _, v := range votes {
			if v.Choice == types.ChoiceWaiting {
				waiting[v.UserID] = true
			}
		}
	}

	var out []string
	for _, id := range audience {
		if !voted[id] || waiting[id] {
			out = append(out, id)
		}
	}
	return out
}

// WaitingSet returns the presence-poll members whose answer is "waiting".
func WaitingSet(p *types.Poll, votes []types.Vote) map[string]bool {
	waiting := make(map[string]bool)
	if !p.Presence {
		return waiting
	}
	for _, v := range votes {
		if v.Choice == types.ChoiceWaiting {
			waiting[v.UserID] = true
		}
	}
	return waiting
}
