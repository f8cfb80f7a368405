package domain

import (
	"fmt"
	"strings"
	"time"

	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
)

type Membership struct {
	Player   playerdomain.Player `json:"player"`
	JoinedAt time.Time           `json:"joinedAt"`
	Tier     Tier                `json:"tier"`
}

// IsNew reports whether the member joined within window of now.
func (m Membership) IsNew(now time.Time, window time.Duration) bool {
	return now.Sub(m.JoinedAt) < window
}

// Roster is one game in one chat. Members are kept sorted by join time
// with tiers matching that order.
type Roster struct {
	ID        int64        `json:"id"`
	ChatID    int64        `json:"chatId"`
	Timeslot  time.Time    `json:"timeslot"`
	Expired   bool         `json:"expired"`
	CreatedAt time.Time    `json:"createdAt"`
	Members   []Membership `json:"members"`
}

func NewRoster(chatID int64, timeslot time.Time, now time.Time) Roster {
	return Roster{
		ChatID:    chatID,
		Timeslot:  timeslot.UTC(),
		CreatedAt: now.UTC(),
	}
}

func (r Roster) Clone() Roster {
	r.Members = append([]Membership(nil), r.Members...)
	return r
}

func (r Roster) SlotCount() int {
	return len(r.Members)
}

func (r Roster) IsEmpty() bool {
	return len(r.Members) == 0
}

func (r Roster) Member(playerID int64) (Membership, bool) {
	for _, m := range r.Members {
		if m.Player.ID == playerID {
			return m, true
		}
	}
	return Membership{}, false
}

func (r Roster) HasPlayer(playerID int64) bool {
	_, ok := r.Member(playerID)
	return ok
}

// AddPlayer is a no-op for existing members and reports whether the roster changed.
func (r *Roster) AddPlayer(p playerdomain.Player, joinedAt time.Time) bool {
	if r.HasPlayer(p.ID) {
		return false
	}

	r.Members = append(r.Members, Membership{Player: p, JoinedAt: joinedAt.UTC()})
	Retier(r.Members)
	return true
}

// RemovePlayer is a no-op for non-members and reports whether the roster changed.
func (r *Roster) RemovePlayer(playerID int64) bool {
	for i, m := range r.Members {
		if m.Player.ID == playerID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			Retier(r.Members)
			return true
		}
	}
	return false
}

func (r Roster) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(r.Timeslot) > window
}

// Expire flips the expired flag once the window has passed. It never
// flips back and reports whether this call made the transition.
func (r *Roster) Expire(now time.Time, window time.Duration) bool {
	if r.Expired || !r.IsExpired(now, window) {
		return false
	}
	r.Expired = true
	return true
}

func (r Roster) ActiveMembers() []Membership {
	var active []Membership
	for _, m := range r.Members {
		if !m.Tier.InQueue() {
			active = append(active, m)
		}
	}
	return active
}

// MentionActive lists mentions of everyone not waiting in the queue.
func (r Roster) MentionActive() string {
	active := r.ActiveMembers()
	mentions := make([]string, 0, len(active))
	for _, m := range active {
		mentions = append(mentions, m.Player.Mention())
	}
	return strings.Join(mentions, ", ")
}

type Bucket int

const (
	BucketEmpty Bucket = iota
	BucketPartial
	BucketFullParty
	BucketTwoParties
)

func (r Roster) Bucket() Bucket {
	n := r.SlotCount()
	switch {
	case n == 0:
		return BucketEmpty
	case n < PartySize:
		return BucketPartial
	case n < TwoPartySize:
		return BucketFullParty
	default:
		return BucketTwoParties
	}
}

type CallPolicy struct {
	MinPlayers int
	// Window is how long before the timeslot calling opens.
	Window time.Duration
}

// CanCall checks whether playerID may summon the party right now.
func (r Roster) CanCall(playerID int64, now time.Time, policy CallPolicy) error {
	m, ok := r.Member(playerID)
	switch {
	case !ok:
		return fmt.Errorf("%w: not a member", ErrCallNotAllowed)
	case m.Tier.InQueue():
		return fmt.Errorf("%w: player is queued", ErrCallNotAllowed)
	case r.SlotCount() < policy.MinPlayers:
		return fmt.Errorf("%w: needs at least %d players", ErrCallNotAllowed, policy.MinPlayers)
	case now.Before(r.Timeslot.Add(-policy.Window)):
		return fmt.Errorf("%w: opens %s before start", ErrCallNotAllowed, policy.Window)
	}
	return nil
}
