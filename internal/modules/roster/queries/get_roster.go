package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

// GetRosterQuery looks a live roster up by id, or by timeslot when
// RosterID is zero.
type GetRosterQuery struct {
	readOnlyQuery
	ChatID   int64
	RosterID int64
	Timeslot time.Time
}

func (q GetRosterQuery) Chat() int64 {
	return q.ChatID
}

func (q GetRosterQuery) Validate() error {
	if q.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", q.ChatID)
	}

	if q.RosterID == 0 && q.Timeslot.IsZero() {
		return fmt.Errorf("invalid RosterID - '%d'", q.RosterID)
	}

	return nil
}

type GetRosterQueryHandler struct {
	store roster.Store
}

func NewGetRosterQueryHandler(store roster.Store) *GetRosterQueryHandler {
	return &GetRosterQueryHandler{store}
}

func (h *GetRosterQueryHandler) Handle(
	ctx context.Context,
	request GetRosterQuery,
) (domain.Roster, error) {
	if request.RosterID == 0 {
		r, err := h.store.FindByTimeslot(ctx, request.ChatID, request.Timeslot.UTC())
		if err != nil {
			return domain.Roster{}, mapError(err)
		}
		return r, nil
	}

	r, err := h.store.Get(ctx, request.RosterID)
	if err != nil {
		return domain.Roster{}, mapError(err)
	}

	if r.ChatID != request.ChatID {
		return domain.Roster{}, mapError(domain.ErrRosterNotFound)
	}

	return r, nil
}
