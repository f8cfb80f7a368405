package domain

import "sort"

type Tier string

const (
	TierActive Tier = "active"
	TierFirst  Tier = "first"
	TierSecond Tier = "second"
	TierQueue  Tier = "queue"
)

const (
	PartySize    = 5
	TwoPartySize = 2 * PartySize
)

func (t Tier) InQueue() bool {
	return t == TierQueue
}

// Tag is the markdown prefix shown in front of a member's name.
func (t Tier) Tag() string {
	switch t {
	case TierFirst:
		return `\[_1st_] `
	case TierSecond:
		return `\[_2nd_] `
	case TierQueue:
		return `\[_queue_] `
	default:
		return ""
	}
}

// TierFor assigns the tier of the member at position i of n.
func TierFor(i, n int) Tier {
	if n < TwoPartySize {
		if i < PartySize {
			return TierActive
		}
		return TierQueue
	}

	switch {
	case i < PartySize:
		return TierFirst
	case i < TwoPartySize:
		return TierSecond
	default:
		return TierQueue
	}
}

// Retier sorts members by join time and reassigns every tier from scratch.
// Members that joined at the same instant keep their relative order.
func Retier(members []Membership) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	for i := range members {
		members[i].Tier = TierFor(i, len(members))
	}
}
