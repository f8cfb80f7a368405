package roster

import (
	"context"
	"sort"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

// Store persists rosters together with their memberships. Create fails
// with domain.ErrDuplicateSlot when a live roster already holds the
// chat and timeslot. Loaded rosters always carry fresh tiers.
type Store interface {
	core.Repository[domain.Roster]
	FindByTimeslot(ctx context.Context, chatID int64, timeslot time.Time) (domain.Roster, error)
	ListByChat(ctx context.Context, chatID int64, includeExpired bool) ([]domain.Roster, error)
}

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	*core.MemoryRepository[domain.Roster]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		MemoryRepository: core.NewMemoryRepository(core.EntityAccessor[domain.Roster]{
			ID:     func(r domain.Roster) int64 { return r.ID },
			WithID: func(r domain.Roster, id int64) domain.Roster { r.ID = id; return r },
			Clone:  domain.Roster.Clone,
		}, domain.ErrRosterNotFound),
	}
}

func liveAt(chatID int64, timeslot time.Time) func(domain.Roster) bool {
	return func(r domain.Roster) bool {
		return r.ChatID == chatID && !r.Expired && r.Timeslot.Equal(timeslot)
	}
}

func (s *MemoryStore) Create(_ context.Context, r domain.Roster) (domain.Roster, error) {
	domain.Retier(r.Members)

	created, ok := s.CreateUnless(r, liveAt(r.ChatID, r.Timeslot))
	if !ok {
		return domain.Roster{}, domain.ErrDuplicateSlot
	}

	return created, nil
}

func (s *MemoryStore) FindByTimeslot(_ context.Context, chatID int64, timeslot time.Time) (domain.Roster, error) {
	found := s.List(liveAt(chatID, timeslot))
	if len(found) == 0 {
		return domain.Roster{}, domain.ErrRosterNotFound
	}
	return found[0], nil
}

func (s *MemoryStore) ListByChat(_ context.Context, chatID int64, includeExpired bool) ([]domain.Roster, error) {
	rosters := s.List(func(r domain.Roster) bool {
		return r.ChatID == chatID && (includeExpired || !r.Expired)
	})

	SortByTimeslot(rosters)
	return rosters, nil
}

func SortByTimeslot(rosters []domain.Roster) {
	sort.SliceStable(rosters, func(i, j int) bool {
		return rosters[i].Timeslot.Before(rosters[j].Timeslot)
	})
}
